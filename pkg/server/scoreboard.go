package server

import (
	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
)

// SetScoreboard makes b the board this client renders. Teams of the previous
// board are removed from the client before the new board's teams are
// created, so a team name shared by both boards is never created twice.
func (p *Player) SetScoreboard(b *scoreboard.Board) {
	p.mu.Lock()
	old := p.board
	if old == b {
		p.mu.Unlock()
		return
	}
	p.board = b
	p.mu.Unlock()

	s := p.server
	if old != nil {
		for _, t := range old.Teams() {
			if pkt, ok := s.create("PacketPlayOutScoreboardTeam", t, []string(nil), bridge.TeamRemove); ok {
				p.WritePacket(pkt)
			}
		}
	}
	if b != nil {
		for _, t := range b.Teams() {
			if pkt, ok := s.create("PacketPlayOutScoreboardTeam", t, t.Entries(), bridge.TeamCreate); ok {
				p.WritePacket(pkt)
			}
		}
	}
}

// Scoreboard returns the board the client renders, or nil.
func (p *Player) Scoreboard() *scoreboard.Board {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.board
}

package server

import (
	"bytes"
	"crypto/md5"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/chat"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/profile"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scoreboard"
	"github.com/StoreStation/phantomcraft/pkg/world"
)

const (
	maxNameLength = 16
	writeTimeout  = 10 * time.Second
)

// ErrOffline is returned when writing to a player that left.
var ErrOffline = errors.New("server: player is offline")

// Player is a connected client. It is both the dispatch.Player and the
// dispatch.Channel for that client.
type Player struct {
	server *Server
	human  *bridge.Human
	conn   net.Conn

	writeMu sync.Mutex
	online  atomic.Bool

	mu    sync.Mutex
	board *scoreboard.Board
}

var (
	_ dispatch.Player  = (*Player)(nil)
	_ dispatch.Channel = (*Player)(nil)
)

func (s *Server) newPlayer(conn net.Conn, name string) *Player {
	im := bridge.NewInteractManager(s.world)
	im.SetGameMode(s.config.DefaultGameMode)
	human := bridge.NewHuman(s.world, profile.New(offlineUUID(name), name), im)
	human.SetLocation(8.5, world.SurfaceY, 8.5, 0, 0)
	return &Player{server: s, human: human, conn: conn}
}

// EntityID returns the player's network entity id.
func (p *Player) EntityID() int32 { return p.human.ID() }

// UniqueID returns the offline-mode UUID.
func (p *Player) UniqueID() uuid.UUID { return p.human.Profile().ID }

// Name returns the player name.
func (p *Player) Name() string { return p.human.Profile().Name }

// Online reports whether the player is in the play state.
func (p *Player) Online() bool { return p.online.Load() }

// Channel returns the player itself as its packet channel.
func (p *Player) Channel() dispatch.Channel { return p }

// World returns the world the player entity lives in.
func (p *Player) World() *bridge.World { return p.human.World() }

// Profile returns the player's game profile.
func (p *Player) Profile() *profile.GameProfile { return p.human.Profile() }

// Location returns the last reported position and rotation.
func (p *Player) Location() bridge.Location { return p.human.Location() }

// Active reports whether packets can still be written.
func (p *Player) Active() bool { return p.online.Load() }

// WritePacket sends pkt to the client.
func (p *Player) WritePacket(pkt *protocol.Packet) error {
	if !p.online.Load() {
		return ErrOffline
	}
	return p.write(pkt)
}

func (p *Player) write(pkt *protocol.Packet) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return protocol.WritePacket(p.conn, pkt)
}

func (p *Player) sendChat(msg chat.Message) {
	p.WritePacket(chatPacket(msg))
}

func (s *Server) handleLoginStart(conn net.Conn, pkt *protocol.Packet) (*Player, error) {
	name, err := protocol.ReadString(pkt.Reader())
	if err != nil {
		return nil, err
	}
	if name == "" || len(name) > maxNameLength {
		s.disconnectLogin(conn, "Invalid username")
		return nil, fmt.Errorf("invalid username %q", name)
	}
	if s.playerCount() >= s.config.MaxPlayers {
		s.disconnectLogin(conn, "The server is full!")
		return nil, fmt.Errorf("server full, rejected %s", name)
	}
	if _, ok := s.Player(offlineUUID(name)); ok {
		s.disconnectLogin(conn, "You are already logged in")
		return nil, fmt.Errorf("%s is already online", name)
	}

	player := s.newPlayer(conn, name)
	err = player.write(protocol.MarshalPacket(0x02, func(w *bytes.Buffer) {
		protocol.WriteString(w, player.UniqueID().String())
		protocol.WriteString(w, name)
	}))
	if err != nil {
		return nil, err
	}
	s.log.Debug("login success", zap.String("player", name), zap.Stringer("uuid", player.UniqueID()))
	return player, nil
}

func (s *Server) handlePlay(player *Player) {
	if err := s.sendJoinSequence(player); err != nil {
		s.log.Info("join failed", zap.String("player", player.Name()), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.players[player.UniqueID()] = player
	s.mu.Unlock()
	player.online.Store(true)

	log := s.log.With(zap.String("player", player.Name()), zap.Int32("eid", player.EntityID()))
	log.Info("player joined")

	stopKeepAlive := make(chan struct{})
	go s.keepAliveLoop(player, stopKeepAlive)

	defer func() {
		close(stopKeepAlive)
		player.online.Store(false)
		s.mu.Lock()
		delete(s.players, player.UniqueID())
		s.mu.Unlock()
		s.despawnPlayer(player)
		s.broadcastChat(chat.Message{
			Translate: "multiplayer.player.left",
			With:      []chat.Message{chat.Text(player.Name())},
			Color:     "yellow",
		})
		s.fire(&s.onQuit, player)
		log.Info("player left")
	}()

	s.sendPlayerInfo(player, "ADD_PLAYER", player.human)
	s.spawnPlayerForOthers(player)
	s.spawnOthersForPlayer(player)
	s.broadcastChat(chat.Message{
		Translate: "multiplayer.player.joined",
		With:      []chat.Message{chat.Text(player.Name())},
		Color:     "yellow",
	})
	s.fire(&s.onJoin, player)

	for {
		player.conn.SetReadDeadline(time.Now().Add(readTimeout))
		pkt, err := protocol.ReadPacket(player.conn)
		if err != nil {
			return
		}
		s.handlePlayPacket(player, pkt)
	}
}

// sendJoinSequence writes everything a client needs before it is shown to
// anyone else.
func (s *Server) sendJoinSequence(player *Player) error {
	loc := player.Location()
	mode := player.human.GameMode()

	packets := []*protocol.Packet{
		protocol.MarshalPacket(0x01, func(w *bytes.Buffer) {
			protocol.WriteInt32(w, player.EntityID())
			protocol.WriteByte(w, mode)
			protocol.WriteByte(w, 0) // Dimension: overworld
			protocol.WriteByte(w, 0) // Difficulty: peaceful
			protocol.WriteByte(w, byte(s.config.MaxPlayers))
			protocol.WriteString(w, "flat")
			protocol.WriteBool(w, false) // Reduced debug info
		}),
		protocol.MarshalPacket(0x05, func(w *bytes.Buffer) {
			protocol.WritePosition(w, int32(loc.X), int32(loc.Y), int32(loc.Z))
		}),
		protocol.MarshalPacket(0x39, func(w *bytes.Buffer) {
			protocol.WriteByte(w, abilityFlags(mode))
			protocol.WriteFloat32(w, 0.05) // Flying speed
			protocol.WriteFloat32(w, 0.1)  // Walking speed
		}),
		protocol.MarshalPacket(0x08, func(w *bytes.Buffer) {
			protocol.WriteFloat64(w, loc.X)
			protocol.WriteFloat64(w, loc.Y)
			protocol.WriteFloat64(w, loc.Z)
			protocol.WriteFloat32(w, loc.Yaw)
			protocol.WriteFloat32(w, loc.Pitch)
			protocol.WriteByte(w, 0) // Flags: all absolute
		}),
	}
	for _, pkt := range packets {
		if err := player.write(pkt); err != nil {
			return err
		}
	}
	return s.sendSpawnChunks(player)
}

func (s *Server) keepAliveLoop(player *Player, stop chan struct{}) {
	ticker := time.NewTicker(s.config.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			id := rand.Int31()
			err := player.WritePacket(protocol.MarshalPacket(0x00, func(w *bytes.Buffer) {
				protocol.WriteVarInt(w, id)
			}))
			if err != nil {
				return
			}
		}
	}
}

// offlineUUID derives the version 3 UUID an offline-mode server assigns:
// the MD5 of "OfflinePlayer:<name>" with version and variant bits set.
func offlineUUID(name string) uuid.UUID {
	id := uuid.UUID(md5.Sum([]byte("OfflinePlayer:" + name)))
	id[6] = id[6]&0x0f | 0x30
	id[8] = id[8]&0x3f | 0x80
	return id
}

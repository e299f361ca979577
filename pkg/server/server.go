// Package server is a small Minecraft 1.8.9 server that hosts plugins and
// exposes its players to them.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/StoreStation/phantomcraft/pkg/bridge"
	"github.com/StoreStation/phantomcraft/pkg/chat"
	"github.com/StoreStation/phantomcraft/pkg/dispatch"
	"github.com/StoreStation/phantomcraft/pkg/plugin"
	"github.com/StoreStation/phantomcraft/pkg/protocol"
	"github.com/StoreStation/phantomcraft/pkg/scheduler"
	"github.com/StoreStation/phantomcraft/pkg/version"
	"github.com/StoreStation/phantomcraft/pkg/world"
)

const (
	ProtocolVersion int32 = 47
	VersionName           = "1.8.9"

	readTimeout     = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	Address           string
	MaxPlayers        int
	MOTD              string
	DefaultGameMode   byte
	Build             version.Version
	KeepAliveInterval time.Duration
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Address:           ":25565",
		MaxPlayers:        20,
		MOTD:              "A phantomcraft server",
		DefaultGameMode:   bridge.GameModeSurvival,
		Build:             version.V1_8_R3,
		KeepAliveInterval: 10 * time.Second,
	}
}

// Server is a Minecraft 1.8 server. It implements dispatch.Host and
// dispatch.Events; listeners run on the scheduler goroutine.
type Server struct {
	config Config
	log    *zap.Logger

	listener net.Listener
	terrain  *world.World
	world    *bridge.World
	sched    *scheduler.Scheduler
	helper   *dispatch.Helper
	plugins  []*plugin.Wrapper

	mu      sync.RWMutex
	players map[uuid.UUID]*Player
	onJoin  []dispatch.PlayerListener
	onQuit  []dispatch.PlayerListener

	cancel   context.CancelFunc
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a server. Call SetHelper before Start.
func New(config Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		config:  config,
		log:     log.Named("server"),
		terrain: world.NewWorld(),
		world:   bridge.NewWorld("world"),
		sched:   scheduler.New(log),
		players: make(map[uuid.UUID]*Player),
		stopCh:  make(chan struct{}),
	}
}

// BuildIdentifier is the revision the server declares to version detection.
func (s *Server) BuildIdentifier() string { return s.config.Build.String() }

// World returns the entity world shared by players and phantoms.
func (s *Server) World() *bridge.World { return s.world }

// Scheduler returns the main thread scheduler.
func (s *Server) Scheduler() *scheduler.Scheduler { return s.sched }

// Addr returns the listen address. Only valid after Start.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// StopChan is closed when the server stops.
func (s *Server) StopChan() <-chan struct{} { return s.stopCh }

// SetHelper sets the dispatch helper used to build packets.
func (s *Server) SetHelper(h *dispatch.Helper) { s.helper = h }

// Install adds a plugin to be enabled on Start.
func (s *Server) Install(p *plugin.Wrapper) { s.plugins = append(s.plugins, p) }

// OnJoin registers fn to run on the scheduler when a player joins.
func (s *Server) OnJoin(fn dispatch.PlayerListener) { s.addListener(&s.onJoin, fn) }

// OnQuit registers fn to run on the scheduler when a player leaves.
func (s *Server) OnQuit(fn dispatch.PlayerListener) { s.addListener(&s.onQuit, fn) }

func (s *Server) addListener(list *[]dispatch.PlayerListener, fn dispatch.PlayerListener) {
	s.mu.Lock()
	*list = append(*list, fn)
	s.mu.Unlock()
}

// Start enables installed plugins, starts the scheduler and begins accepting
// connections. A plugin that fails to enable is logged and skipped.
func (s *Server) Start() error {
	if s.helper == nil {
		return errors.New("server: no packet helper set")
	}
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	s.listener = ln

	for _, p := range s.plugins {
		if err := p.Enable(); err != nil {
			s.log.Error("plugin failed to enable", zap.String("plugin", p.Name()), zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.sched.Run(ctx)

	s.log.Info("server listening",
		zap.Stringer("addr", ln.Addr()),
		zap.String("build", s.BuildIdentifier()),
		zap.Int32("protocol", ProtocolVersion))
	go s.acceptLoop()
	return nil
}

// Stop disables plugins in reverse install order, closes every connection
// and stops the scheduler.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.listener != nil {
			s.listener.Close()
		}
		if s.cancel != nil {
			s.disablePlugins()
		}
		s.mu.RLock()
		for _, p := range s.players {
			p.conn.Close()
		}
		s.mu.RUnlock()
		if s.cancel != nil {
			s.cancel()
		}
	})
}

func (s *Server) disablePlugins() {
	done := make(chan struct{})
	s.sched.Post(func() {
		defer close(done)
		for i := len(s.plugins) - 1; i >= 0; i-- {
			s.plugins[i].Disable()
		}
	})
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		s.log.Warn("plugins did not disable in time")
	}
}

// Player returns an online player.
func (s *Server) Player(id uuid.UUID) (dispatch.Player, bool) {
	s.mu.RLock()
	p, ok := s.players[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return p, true
}

// OnlinePlayers lists players in join order.
func (s *Server) OnlinePlayers() []dispatch.Player {
	players := s.snapshot(nil)
	out := make([]dispatch.Player, len(players))
	for i, p := range players {
		out[i] = p
	}
	return out
}

// snapshot returns online players other than exclude, ordered by entity id.
func (s *Server) snapshot(exclude *Player) []*Player {
	s.mu.RLock()
	players := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p != exclude {
			players = append(players, p)
		}
	}
	s.mu.RUnlock()
	sort.Slice(players, func(i, j int) bool { return players[i].EntityID() < players[j].EntityID() })
	return players
}

func (s *Server) playerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *Server) fire(list *[]dispatch.PlayerListener, p *Player) {
	s.mu.RLock()
	listeners := append([]dispatch.PlayerListener(nil), *list...)
	s.mu.RUnlock()
	if len(listeners) == 0 {
		return
	}
	s.sched.Post(func() {
		for _, fn := range listeners {
			fn(p)
		}
	})
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				s.log.Warn("accept error", zap.Error(err))
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	state := protocol.StateHandshaking
	var clientProtocol int32

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		pkt, err := protocol.ReadPacket(conn)
		if err != nil {
			return
		}

		switch state {
		case protocol.StateHandshaking:
			if pkt.ID == 0x00 {
				clientProtocol, state, err = readHandshake(pkt)
				if err != nil {
					s.log.Debug("handshake error", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
					return
				}
			}
		case protocol.StateStatus:
			switch pkt.ID {
			case 0x00:
				s.handleStatusRequest(conn)
			case 0x01:
				s.handlePing(conn, pkt)
				return
			}
		case protocol.StateLogin:
			if pkt.ID != 0x00 {
				continue
			}
			if clientProtocol != ProtocolVersion {
				s.disconnectLogin(conn, fmt.Sprintf("Outdated client! Please use %s", VersionName))
				return
			}
			player, err := s.handleLoginStart(conn, pkt)
			if err != nil {
				s.log.Info("login rejected", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
				return
			}
			s.handlePlay(player)
			return
		default:
			return
		}
	}
}

func readHandshake(pkt *protocol.Packet) (int32, int, error) {
	r := pkt.Reader()
	proto, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return 0, 0, err
	}
	if _, err := protocol.ReadString(r); err != nil {
		return 0, 0, err
	}
	if _, err := protocol.ReadUint16(r); err != nil {
		return 0, 0, err
	}
	next, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return 0, 0, err
	}
	if next != protocol.StateStatus && next != protocol.StateLogin {
		return 0, 0, fmt.Errorf("unexpected next state %d", next)
	}
	return proto, int(next), nil
}

type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description chat.Message `json:"description"`
}

func (s *Server) handleStatusRequest(conn net.Conn) {
	var resp statusResponse
	resp.Version.Name = VersionName
	resp.Version.Protocol = ProtocolVersion
	resp.Players.Max = s.config.MaxPlayers
	resp.Players.Online = s.playerCount()
	resp.Description = chat.Text(s.config.MOTD)

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal status response", zap.Error(err))
		return
	}
	protocol.WritePacket(conn, protocol.MarshalPacket(0x00, func(w *bytes.Buffer) {
		protocol.WriteString(w, string(data))
	}))
}

func (s *Server) handlePing(conn net.Conn, pkt *protocol.Packet) {
	payload, err := protocol.ReadInt64(pkt.Reader())
	if err != nil {
		return
	}
	protocol.WritePacket(conn, protocol.MarshalPacket(0x01, func(w *bytes.Buffer) {
		protocol.WriteInt64(w, payload)
	}))
}

func (s *Server) disconnectLogin(conn net.Conn, reason string) {
	protocol.WritePacket(conn, protocol.MarshalPacket(0x00, func(w *bytes.Buffer) {
		protocol.WriteString(w, chat.Text(reason).String())
	}))
}

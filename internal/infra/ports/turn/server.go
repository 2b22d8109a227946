package turn

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	pionturn "github.com/pion/turn/v4"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/application/constant"
)

// Server - встроенный TURN сервер (UDP + TCP) для пиров за NAT.
// Принимает временные креды, которые выдаёт /api/v1/ice.
type Server struct {
	srv *pionturn.Server

	udpAddr net.Addr
	tcpAddr net.Addr
}

func New(cfg config.TurnServerConfig, secret string) (*Server, error) {
	publicIP := net.ParseIP(cfg.PublicIP)
	if publicIP == nil {
		return nil, fmt.Errorf("invalid TURN public ip %q", cfg.PublicIP)
	}

	addr := net.JoinHostPort(cfg.Listen, strconv.Itoa(cfg.Port))

	udpListener, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("udp listen: %w", err)
	}

	tcpListener, err := net.Listen("tcp4", addr)
	if err != nil {
		_ = udpListener.Close()
		return nil, fmt.Errorf("tcp listen: %w", err)
	}

	relayAddressGenerator := &pionturn.RelayAddressGeneratorStatic{
		RelayAddress: publicIP,
		Address:      cfg.Listen,
	}

	loggerFactory := newSlogLoggerFactory()

	srv, err := pionturn.NewServer(
		pionturn.ServerConfig{
			Realm:         cfg.Realm,
			AuthHandler:   pionturn.NewLongTermAuthHandler(secret, loggerFactory.NewLogger("turn-auth")),
			LoggerFactory: loggerFactory,
			PacketConnConfigs: []pionturn.PacketConnConfig{
				{
					PacketConn:            udpListener,
					RelayAddressGenerator: relayAddressGenerator,
				},
			},
			ListenerConfigs: []pionturn.ListenerConfig{
				{
					Listener:              tcpListener,
					RelayAddressGenerator: relayAddressGenerator,
				},
			},
		},
	)
	if err != nil {
		_ = udpListener.Close()
		_ = tcpListener.Close()
		return nil, fmt.Errorf("new turn server: %w", err)
	}

	slog.Info(
		"TURN server started",
		slog.String(constant.Addr, udpListener.LocalAddr().String()),
		slog.String("public_ip", cfg.PublicIP),
		slog.String("realm", cfg.Realm),
	)

	return &Server{
		srv:     srv,
		udpAddr: udpListener.LocalAddr(),
		tcpAddr: tcpListener.Addr(),
	}, nil
}

func (s *Server) UDPAddr() net.Addr {
	return s.udpAddr
}

func (s *Server) TCPAddr() net.Addr {
	return s.tcpAddr
}

func (s *Server) Close() error {
	return s.srv.Close()
}

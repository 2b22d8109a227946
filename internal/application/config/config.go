package config

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`

	// AllowedOrigin - origin фронта для проверки websocket и CORS, "*" разрешает всё
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"public"`

	Log    LogConfig
	Relay  RelayConfig
	WS     WebsocketConfig
	Coturn CoturnConfig
	Turn   TurnServerConfig

	StunURLs []string `env:"STUN_URLS" envSeparator:"," envDefault:"stun:stun.l.google.com:19302"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// File - если задан, логи пишутся в файл с ротацией
	File string `env:"LOG_FILE"`
}

type RelayConfig struct {
	// RoomCapacity - максимум участников в комнате, 0 отключает проверку
	RoomCapacity      int  `env:"ROOM_CAPACITY" envDefault:"2"`
	RequireMembership bool `env:"RELAY_REQUIRE_MEMBERSHIP" envDefault:"false"`
	QueueSize         int  `env:"ROUTER_QUEUE_SIZE" envDefault:"256"`
}

type WebsocketConfig struct {
	SendBuffer     int           `env:"WS_SEND_BUFFER" envDefault:"256"`
	MaxMessageSize int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`
	PingInterval   time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	PongWait       time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	WriteWait      time.Duration `env:"WS_WRITE_WAIT" envDefault:"10s"`
}

type CoturnConfig struct {
	Host string `env:"COTURN_HOST"`

	// Secret - нужен для генерации временных кредов для фронта
	Secret string        `env:"COTURN_SECRET"`
	TTL    time.Duration `env:"COTURN_TTL" envDefault:"1h"`
}

// TurnServerConfig - встроенный TURN сервер, креды проверяются по COTURN_SECRET
type TurnServerConfig struct {
	Enabled  bool   `env:"TURN_ENABLED" envDefault:"false"`
	PublicIP string `env:"TURN_PUBLIC_IP"`
	Listen   string `env:"TURN_LISTEN" envDefault:"0.0.0.0"`
	Port     int    `env:"TURN_PORT" envDefault:"3478"`
	Realm    string `env:"TURN_REALM" envDefault:"callrelay"`
}

func (c *CoturnConfig) Enabled() bool {
	return c.Host != "" && c.Secret != ""
}

// Credentials генерирует временные креды TURN по схеме static-auth-secret
func (c *CoturnConfig) Credentials(now time.Time) (username, password string) {
	username = strconv.FormatInt(now.Add(c.TTL).Unix(), 10)

	mac := hmac.New(sha1.New, []byte(c.Secret))
	mac.Write([]byte(username))

	return username, base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ICEServers собирает список STUN/TURN серверов для клиента
func (c *Config) ICEServers(now time.Time) []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, 2)

	if len(c.StunURLs) > 0 {
		servers = append(servers, webrtc.ICEServer{URLs: c.StunURLs})
	}

	if c.Coturn.Enabled() {
		username, password := c.Coturn.Credentials(now)

		servers = append(servers, webrtc.ICEServer{
			URLs: []string{
				fmt.Sprintf("turn:%s?transport=udp", c.Coturn.Host),
				fmt.Sprintf("turn:%s?transport=tcp", c.Coturn.Host),
			},
			Username:   username,
			Credential: password,
		})
	}

	return servers
}

// OriginAllowed проверяет Origin websocket запроса
func (c *Config) OriginAllowed(origin string) bool {
	if c.Debug || c.AllowedOrigin == "*" {
		return true
	}

	return origin == c.AllowedOrigin
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if c.Relay.RoomCapacity < 0 {
		return nil, fmt.Errorf("ROOM_CAPACITY must not be negative, got %d", c.Relay.RoomCapacity)
	}

	if c.Relay.QueueSize <= 0 || c.WS.SendBuffer <= 0 {
		return nil, fmt.Errorf("ROUTER_QUEUE_SIZE and WS_SEND_BUFFER must be positive")
	}

	if c.WS.PingInterval >= c.WS.PongWait {
		return nil, fmt.Errorf("WS_PING_INTERVAL (%s) must be less than WS_PONG_WAIT (%s)", c.WS.PingInterval, c.WS.PongWait)
	}

	if c.Turn.Enabled {
		if c.Coturn.Secret == "" || c.Turn.PublicIP == "" {
			return nil, fmt.Errorf("TURN_ENABLED requires COTURN_SECRET and TURN_PUBLIC_IP")
		}

		// клиентам отдаём встроенный сервер, если внешний не указан
		if c.Coturn.Host == "" {
			c.Coturn.Host = net.JoinHostPort(c.Turn.PublicIP, strconv.Itoa(c.Turn.Port))
		}
	}

	return &c, nil
}

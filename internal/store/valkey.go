package store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

type ValkeyTLSConfig struct {
	Enabled bool
	CAFile  string
}

type ValkeyConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      ValkeyTLSConfig
	// Retention applies to events recorded without an explicit expiry.
	Retention time.Duration
}

type valkeyStore struct {
	client    valkey.Client
	retention time.Duration
}

// NewValkey connects to a valkey or redis server and pings it before returning.
func NewValkey(cfg ValkeyConfig) (EventStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("store: valkey address required")
	}

	option := valkey.ClientOption{
		InitAddress:       []string{cfg.Address},
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		AlwaysRESP2:       true,
		ForceSingleClient: true,
		DisableCache:      true,
	}

	if cfg.TLS.Enabled {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if cfg.TLS.CAFile != "" {
			caData, err := os.ReadFile(cfg.TLS.CAFile)
			if err != nil {
				return nil, fmt.Errorf("store: read valkey ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caData) {
				return nil, errors.New("store: valkey ca file contains no certificates")
			}
			tlsConfig.RootCAs = pool
		}
		option.TLSConfig = tlsConfig
	}

	client, err := valkey.NewClient(option)
	if err != nil {
		return nil, fmt.Errorf("store: valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("store: valkey ping: %w", err)
	}

	retention := cfg.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	return &valkeyStore{client: client, retention: retention}, nil
}

func (s *valkeyStore) Record(ctx context.Context, event Event) error {
	event, err := stamp(event, s.retention)
	if err != nil {
		return err
	}
	ttl := time.Until(event.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("store: valkey marshal: %w", err)
	}
	cmd := s.client.B().Set().Key(eventKey(event.SignatoryID)).Value(string(payload)).Px(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("store: valkey set: %w", err)
	}
	return nil
}

func (s *valkeyStore) Latest(ctx context.Context, signatoryID int64) (Event, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(eventKey(signatoryID)).Build())
	if err := resp.Error(); err != nil {
		if errors.Is(err, valkey.Nil) {
			return Event{}, false, nil
		}
		return Event{}, false, fmt.Errorf("store: valkey get: %w", err)
	}
	payload, err := resp.AsBytes()
	if err != nil {
		return Event{}, false, fmt.Errorf("store: valkey get bytes: %w", err)
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, false, fmt.Errorf("store: valkey unmarshal: %w", err)
	}
	return event, true, nil
}

// Size counts the signatory keys only, so the database can be shared.
func (s *valkeyStore) Size(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(keyPrefix + "*").Count(256).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return 0, fmt.Errorf("store: valkey scan: %w", err)
		}
		total += int64(len(entry.Elements))
		cursor = entry.Cursor
		if cursor == 0 {
			return total, nil
		}
	}
}

func (s *valkeyStore) Close(context.Context) error {
	s.client.Close()
	return nil
}

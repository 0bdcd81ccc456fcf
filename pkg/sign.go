/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package pkg

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nuts-foundation/nuts-esign/configuration"
	"github.com/nuts-foundation/nuts-esign/logging"
	"github.com/nuts-foundation/nuts-esign/pkg/blob"
	"github.com/nuts-foundation/nuts-esign/pkg/evidence"
	"github.com/nuts-foundation/nuts-esign/pkg/lock"
	"github.com/nuts-foundation/nuts-esign/pkg/metrics"
	"github.com/nuts-foundation/nuts-esign/pkg/notify"
	"github.com/nuts-foundation/nuts-esign/pkg/seal"
	"github.com/nuts-foundation/nuts-esign/pkg/session"
	"github.com/nuts-foundation/nuts-esign/pkg/stamp"
	"github.com/nuts-foundation/nuts-esign/pkg/store"
	"github.com/nuts-foundation/nuts-esign/pkg/store/postgres"
	"github.com/nuts-foundation/nuts-esign/pkg/token"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// SigningClient is the interface the API layers use to drive signing sessions
type SigningClient interface {
	Create(ctx context.Context, request session.CreateRequest) (*types.Session, error)
	DefineParties(ctx context.Context, id types.SessionID, roster types.Roster, meta types.RequestMeta) ([]types.Party, error)
	RequestOTP(ctx context.Context, id types.SessionID, role types.Role, meta types.RequestMeta) error
	IssueIndividualLink(ctx context.Context, id types.SessionID, meta types.RequestMeta) (string, error)
	VerifyAndSign(ctx context.Context, request session.SignRequest) (*session.SignResult, error)
	Finalize(ctx context.Context, id types.SessionID) (*types.Session, error)
	Status(ctx context.Context, id types.SessionID) (*session.Status, error)
	Evidence(ctx context.Context, id types.SessionID) (*evidence.Report, error)
	DownloadFinal(ctx context.Context, id types.SessionID) ([]byte, error)
	VerifySeal(jws string) (*seal.Payload, error)
}

// Compiler check
var _ SigningClient = (*Sign)(nil)

// Sign is the signing engine. It wires the session service to the configured backends.
type Sign struct {
	Config     configuration.EsignConfiguration
	configOnce sync.Once
	configDone bool
	*session.Service
	closers []io.Closer
}

var instance *Sign
var oneBackend sync.Once

// SignInstance returns the singleton Sign, configured with defaults until Configure is called
func SignInstance() *Sign {
	oneBackend.Do(func() {
		instance = &Sign{
			Config: configuration.DefaultConfiguration(),
		}
	})
	return instance
}

// Configure validates the configuration and connects the backends. It only runs once, later calls return nil.
func (s *Sign) Configure() (err error) {
	s.configOnce.Do(func() {
		if err = s.Config.Validate(); err != nil {
			return
		}
		if err = s.configure(); err != nil {
			_ = s.Shutdown()
			return
		}
		s.configDone = true
	})
	return err
}

// Shutdown closes the backend connections
func (s *Sign) Shutdown() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			logging.Log().WithError(err).Warn("could not close backend")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.closers = nil
	return firstErr
}

func (s *Sign) configure() error {
	c := s.Config
	secret := []byte(c.SealSecret)

	roles := make([]types.Role, 0, len(c.RequiredRoles))
	for _, r := range c.RequiredRoles {
		role, err := types.ParseRole(r)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", configuration.ConfRequiredRoles, err)
		}
		roles = append(roles, role)
	}

	tokens, err := token.NewIssuer(secret, c.OTPTTL, c.LinkTTL)
	if err != nil {
		return err
	}
	sealer, err := seal.NewSealer(secret)
	if err != nil {
		return err
	}
	lines, err := stamp.NewLineRenderer(nil, c.Stamp.Timezone, c.Stamp.Locale)
	if err != nil {
		return err
	}
	location, err := time.LoadLocation(c.Stamp.Timezone)
	if err != nil {
		return err
	}

	sessionStore, err := s.openStore()
	if err != nil {
		return err
	}
	blobs, err := s.openBlobs()
	if err != nil {
		return err
	}
	locker, err := s.openLocker()
	if err != nil {
		return err
	}
	notifier, err := s.openNotifier()
	if err != nil {
		return err
	}

	s.Service = &session.Service{
		Store:    sessionStore,
		Blobs:    blobs,
		Locker:   locker,
		Tokens:   tokens,
		Sealer:   sealer,
		Stamper:  stamp.NewPDFStamper(c.Stamp.FontSize),
		Lines:    lines,
		Notifier: notifier,
		Ledger:   evidence.NewLedger(location),
		Metrics:  metrics.New(),
		Config: session.Config{
			RequiredRoles:   roles,
			StampPage:       c.Stamp.Page,
			MaxDocumentSize: c.MaxDocumentSize,
			PublicURL:       c.PublicURL,
			LinkTemplate:    c.LinkTemplate,
		},
		NowFunc: time.Now,
	}
	logging.Log().Infof("signing engine configured (store: %s, lock: %s, notifier: %s)", c.Store, c.Lock, c.Notifier)
	return nil
}

func (s *Sign) openStore() (store.Store, error) {
	if s.Config.Store != configuration.BackendPostgres {
		logging.Log().Warn("using in-memory session store, sessions are lost on restart")
		return store.NewMemoryStore(), nil
	}
	db, err := postgres.Open(s.Config.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}
	s.closers = append(s.closers, db)
	return db, nil
}

func (s *Sign) openBlobs() (blob.Store, error) {
	if s.Config.BlobDir == "" {
		return blob.NewMemoryStore(), nil
	}
	return blob.NewFileSystemStore(s.Config.BlobDir)
}

func (s *Sign) openLocker() (lock.Locker, error) {
	if s.Config.Lock != configuration.BackendRedis {
		return lock.NewMemoryLocker(), nil
	}
	r := s.Config.Redis
	locker, err := lock.NewRedisLocker(r.Address, r.Password, r.DB, s.Config.LockTTL)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, locker)
	return locker, nil
}

func (s *Sign) openNotifier() (notify.Notifier, error) {
	if s.Config.Notifier != configuration.NotifierWebhook {
		return notify.LogNotifier{}, nil
	}
	w := s.Config.Webhook
	return notify.NewWebhookNotifier(w.URL, w.Secret, w.Timeout)
}

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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nuts-foundation/nuts-esign/pkg/store"
	"github.com/nuts-foundation/nuts-esign/pkg/types"
)

// Compiler check
var _ store.Store = (*Store)(nil)

// Store is a store.Store backed by PostgreSQL. Update locks the session row for the duration of the transaction.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connect postgres")
	}
	return New(db)
}

// New creates a Store on an existing connection and migrates the schema
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&SessionModel{}, &PartyModel{}, &EventModel{}); err != nil {
		return nil, pkgerrors.Wrap(err, "migrate schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateSession inserts the session and its first events in one transaction
func (s *Store) CreateSession(ctx context.Context, session types.Session, events []types.Event) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := sessionModelFromDomain(session)
		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return store.ErrExists
			}
			return err
		}
		return appendEvents(tx, session.ID, events)
	})
}

// Update runs fn in a database transaction holding a row lock on the session
func (s *Store) Update(ctx context.Context, id types.SessionID, fn func(tx store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var model SessionModel
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, "id = ?", string(id)).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		parties, err := listParties(db, id)
		if err != nil {
			return err
		}
		return fn(&pgTx{db: db, session: model.toDomain(), parties: parties})
	})
}

// GetSession loads the session
func (s *Store) GetSession(ctx context.Context, id types.SessionID) (*types.Session, error) {
	var model SessionModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	session := model.toDomain()
	return &session, nil
}

// ListParties loads the roster in stamping order
func (s *Store) ListParties(ctx context.Context, id types.SessionID) ([]types.Party, error) {
	db := s.db.WithContext(ctx)
	if err := exists(db, id); err != nil {
		return nil, err
	}
	return listParties(db, id)
}

// ListEvents loads the events in append order
func (s *Store) ListEvents(ctx context.Context, id types.SessionID) ([]types.Event, error) {
	db := s.db.WithContext(ctx)
	if err := exists(db, id); err != nil {
		return nil, err
	}
	var models []EventModel
	if err := db.Where("session_id = ?", string(id)).Order("seq asc").Find(&models).Error; err != nil {
		return nil, err
	}
	events := make([]types.Event, 0, len(models))
	for _, m := range models {
		e, err := m.toDomain()
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "event %s", m.ID)
		}
		events = append(events, e)
	}
	return events, nil
}

func exists(db *gorm.DB, id types.SessionID) error {
	var count int64
	if err := db.Model(&SessionModel{}).Where("id = ?", string(id)).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return store.ErrNotFound
	}
	return nil
}

func listParties(db *gorm.DB, id types.SessionID) ([]types.Party, error) {
	var models []PartyModel
	if err := db.Where("session_id = ?", string(id)).Find(&models).Error; err != nil {
		return nil, err
	}
	parties := make([]types.Party, len(models))
	for i, m := range models {
		parties[i] = m.toDomain()
	}
	types.SortParties(parties)
	return parties, nil
}

func appendEvents(db *gorm.DB, id types.SessionID, events []types.Event) error {
	for _, e := range events {
		if e.SessionID != id {
			return fmt.Errorf("event %s belongs to another session", e.ID)
		}
		model, err := eventModelFromDomain(e)
		if err != nil {
			return err
		}
		if err := db.Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "SQLSTATE 23505")
}

type pgTx struct {
	db      *gorm.DB
	session types.Session
	parties []types.Party
}

func (t *pgTx) Session() types.Session {
	return store.CloneSession(t.session)
}

func (t *pgTx) Parties() []types.Party {
	result := make([]types.Party, len(t.parties))
	for i, p := range t.parties {
		result[i] = store.CloneParty(p)
	}
	return result
}

func (t *pgTx) ReplaceParties(parties []types.Party) error {
	seen := map[types.Role]bool{}
	for _, p := range parties {
		if p.SessionID != t.session.ID {
			return fmt.Errorf("party %s belongs to another session", p.ID)
		}
		if seen[p.Role] {
			return fmt.Errorf("duplicate role %s", p.Role)
		}
		seen[p.Role] = true
	}
	if err := t.db.Where("session_id = ?", string(t.session.ID)).Delete(&PartyModel{}).Error; err != nil {
		return err
	}
	t.parties = nil
	for _, p := range parties {
		model := partyModelFromDomain(p)
		if err := t.db.Create(&model).Error; err != nil {
			return err
		}
		t.parties = append(t.parties, store.CloneParty(p))
	}
	types.SortParties(t.parties)
	return nil
}

func (t *pgTx) SaveParty(party types.Party) error {
	for i, p := range t.parties {
		if p.ID != party.ID {
			continue
		}
		if p.Role != party.Role {
			return fmt.Errorf("party %s cannot change role", party.ID)
		}
		model := partyModelFromDomain(party)
		if err := t.db.Save(&model).Error; err != nil {
			return err
		}
		t.parties[i] = store.CloneParty(party)
		return nil
	}
	return fmt.Errorf("party %s not found", party.ID)
}

func (t *pgTx) SaveSession(session types.Session) error {
	if session.ID != t.session.ID {
		return fmt.Errorf("session %s cannot be saved in transaction of %s", session.ID, t.session.ID)
	}
	if session.OriginalDigest != t.session.OriginalDigest {
		return fmt.Errorf("original digest of session %s cannot change", session.ID)
	}
	model := sessionModelFromDomain(session)
	if err := t.db.Save(&model).Error; err != nil {
		return err
	}
	t.session = store.CloneSession(session)
	return nil
}

func (t *pgTx) Append(events ...types.Event) error {
	return appendEvents(t.db, t.session.ID, events)
}

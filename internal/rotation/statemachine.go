package rotation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/credential"
	"github.com/meridianpay/authgateway/internal/errors"
	"github.com/meridianpay/authgateway/internal/secretstore"
)

// DefaultTransitionPeriod is spec §6's rotation.default_transition_minutes
// default (60 minutes, minimum 5).
const DefaultTransitionPeriod = 60 * time.Minute

// MinTransitionPeriod is the floor spec §6 fixes for
// rotation.default_transition_minutes.
const MinTransitionPeriod = 5 * time.Minute

// StateMachine drives rotations for the client population, holding the
// process-level Record set in memory (spec §9: "Rotation record
// (process-level)") while the durable TransitionRecord and credential
// Records live in the secret store. Grounded on
// other_examples/33c20cba_..._secret_rotation.go.go's
// GenerateAPIKey/RotateAPIKey/RotateJWTSecret flow (generate secret,
// hash, assign version, persist, supersede the old record),
// restructured around the explicit DAG spec §4.7 names.
type StateMachine struct {
	store secretstore.Store
	cache cache.Cache

	mu          sync.Mutex
	byClientID  map[string]*Record
	byRotationID map[string]*Record
}

func NewStateMachine(store secretstore.Store, c cache.Cache) *StateMachine {
	return &StateMachine{
		store:        store,
		cache:        c,
		byClientID:   make(map[string]*Record),
		byRotationID: make(map[string]*Record),
	}
}

// ActiveRotation returns the in-progress (non-terminal) rotation for
// clientID, if any.
func (sm *StateMachine) ActiveRotation(clientID string) (*Record, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	r, ok := sm.byClientID[clientID]
	if !ok || r.CurrentState.Terminal() {
		return nil, false
	}
	return r, true
}

// snapshotActive returns a point-in-time copy of every non-terminal
// rotation, for the driver to poll without holding sm's lock across
// its own store round trips.
func (sm *StateMachine) snapshotActive() []*Record {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	out := make([]*Record, 0, len(sm.byRotationID))
	for _, r := range sm.byRotationID {
		if !r.CurrentState.Terminal() {
			out = append(out, r)
		}
	}
	return out
}

// Initiate starts a new rotation for clientID (spec §4.7 INITIATED):
// generates a new secret, hashes it, assigns a fresh version, and
// writes the version record as ACTIVE without yet making it acceptable
// for authentication. Returns the freshly generated plaintext secret so
// the operator can hand it to the vendor out of band; it is never
// stored or logged.
func (sm *StateMachine) Initiate(ctx context.Context, clientID string, transitionPeriod time.Duration, permissions []string, force bool) (*Record, string, error) {
	if transitionPeriod < MinTransitionPeriod {
		transitionPeriod = DefaultTransitionPeriod
	}

	if _, ok := sm.ActiveRotation(clientID); ok && !force {
		return nil, "", errors.New(errors.KindRotationConflict, "rotation already in progress for this client")
	}

	oldRecord, err := sm.fetchActiveRecord(ctx, clientID)
	if err != nil {
		return nil, "", err
	}

	newVersion := uuid.NewString()
	plaintext, err := generateSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := credential.HashSecret(plaintext)
	if err != nil {
		return nil, "", err
	}

	newRecord := &credential.Record{
		ClientID:    clientID,
		Version:     newVersion,
		SecretHash:  hash,
		Status:      credential.StatusActive,
		Permissions: permissions,
		CreatedAt:   time.Now(),
	}
	if err := sm.putCredentialRecord(ctx, secretstore.CredentialVersionPath(clientID, newVersion), newRecord); err != nil {
		return nil, "", err
	}

	// Every later transition (AdvanceToOldDeprecated, Fail's rollback from
	// StateDualActive/StateOldDeprecated) reads the old version back out of
	// its own per-version path, not CredentialPath, so it has to be seeded
	// here before the rotation record is even created.
	if err := sm.putCredentialRecord(ctx, secretstore.CredentialVersionPath(clientID, oldRecord.Version), oldRecord); err != nil {
		return nil, "", err
	}

	record := &Record{
		RotationID:       uuid.NewString(),
		ClientID:         clientID,
		CurrentState:     StateInitiated,
		TargetState:      StateNewActive,
		OldVersion:       oldRecord.Version,
		NewVersion:       newVersion,
		TransitionPeriod: transitionPeriod,
		StartedAt:        time.Now(),
		Status:           StateInitiated,
	}

	sm.mu.Lock()
	sm.byClientID[clientID] = record
	sm.byRotationID[record.RotationID] = record
	sm.mu.Unlock()

	logx.Infof("rotation %s initiated for client %s: %s -> %s", record.RotationID, clientID, record.OldVersion, record.NewVersion)
	return record, plaintext, nil
}

// AdvanceToDualActive performs the INITIATED -> DUAL_ACTIVE transition:
// writes the live transition record, making both old and new versions
// acceptable.
func (sm *StateMachine) AdvanceToDualActive(ctx context.Context, rotationID string) (*Record, error) {
	return sm.transition(ctx, rotationID, StateDualActive, func(ctx context.Context, r *Record) error {
		tr := &TransitionRecord{
			ClientID:   r.ClientID,
			OldVersion: r.OldVersion,
			NewVersion: r.NewVersion,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(r.TransitionPeriod),
			State:      StateDualActive,
		}
		return sm.putTransitionRecord(ctx, tr)
	})
}

// AdvanceToOldDeprecated performs DUAL_ACTIVE -> OLD_DEPRECATED:
// demotes the old version's status so it stops authenticating (unless
// the operator has opted into grace-period acceptance — that flag
// lives on the credential.Validator, not here) while staying readable.
func (sm *StateMachine) AdvanceToOldDeprecated(ctx context.Context, rotationID string) (*Record, error) {
	return sm.transition(ctx, rotationID, StateOldDeprecated, func(ctx context.Context, r *Record) error {
		oldRecord, err := sm.getCredentialRecord(ctx, secretstore.CredentialVersionPath(r.ClientID, r.OldVersion))
		if err != nil {
			return err
		}
		now := time.Now()
		oldRecord.Status = credential.StatusDeprecated
		oldRecord.DeprecatedAt = &now
		if err := sm.putCredentialRecord(ctx, secretstore.CredentialVersionPath(r.ClientID, r.OldVersion), oldRecord); err != nil {
			return err
		}

		tr, err := sm.getTransitionRecord(ctx, r.ClientID)
		if err != nil {
			return err
		}
		tr.State = StateOldDeprecated
		return sm.putTransitionRecord(ctx, tr)
	})
}

// AdvanceToNewActive performs OLD_DEPRECATED -> NEW_ACTIVE, the
// terminal success state: deletes the old version record, removes the
// transition record, writes the new version as the default live
// credential, and invalidates every cached token for the client (spec
// §4.7 NEW_ACTIVE: "a simple correct implementation invalidates all
// tokens for the client_id at this moment").
func (sm *StateMachine) AdvanceToNewActive(ctx context.Context, rotationID string) (*Record, error) {
	return sm.transition(ctx, rotationID, StateNewActive, func(ctx context.Context, r *Record) error {
		newRecord, err := sm.getCredentialRecord(ctx, secretstore.CredentialVersionPath(r.ClientID, r.NewVersion))
		if err != nil {
			return err
		}
		if err := sm.putCredentialRecord(ctx, secretstore.CredentialPath(r.ClientID), newRecord); err != nil {
			return err
		}
		if err := sm.store.DeleteSecret(ctx, secretstore.CredentialVersionPath(r.ClientID, r.OldVersion)); err != nil {
			return err
		}
		if err := sm.store.DeleteSecret(ctx, secretstore.TransitionPath(r.ClientID)); err != nil {
			return err
		}
		if err := sm.cache.InvalidatePrefix(ctx, cache.ClientIndexPrefix(r.ClientID)); err != nil {
			logx.Errorf("invalidate cached tokens for %s after rotation: %v", r.ClientID, err)
		}
		now := time.Now()
		r.CompletedAt = &now
		return nil
	})
}

// Fail transitions rotationID to FAILED from whatever non-terminal
// state it is currently in, rolling back per spec §4.7's per-state
// recipe.
func (sm *StateMachine) Fail(ctx context.Context, rotationID string, reason string) (*Record, error) {
	sm.mu.Lock()
	r, ok := sm.byRotationID[rotationID]
	sm.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.KindValidation, "unknown rotation")
	}

	fromState := r.CurrentState
	if fromState == StateFailed {
		return r, nil
	}
	err := withLease(ctx, sm.cache, r.ClientID, func(ctx context.Context) error {
		switch fromState {
		case StateInitiated:
			return sm.store.DeleteSecret(ctx, secretstore.CredentialVersionPath(r.ClientID, r.NewVersion))

		case StateDualActive:
			if err := sm.store.DeleteSecret(ctx, secretstore.TransitionPath(r.ClientID)); err != nil {
				return err
			}
			if err := sm.store.DeleteSecret(ctx, secretstore.CredentialVersionPath(r.ClientID, r.NewVersion)); err != nil {
				return err
			}
			oldRecord, err := sm.getCredentialRecord(ctx, secretstore.CredentialVersionPath(r.ClientID, r.OldVersion))
			if err != nil {
				return err
			}
			return sm.putCredentialRecord(ctx, secretstore.CredentialPath(r.ClientID), oldRecord)

		case StateOldDeprecated:
			oldRecord, err := sm.getCredentialRecord(ctx, secretstore.CredentialVersionPath(r.ClientID, r.OldVersion))
			if err != nil {
				return err
			}
			oldRecord.Status = credential.StatusActive
			oldRecord.DeprecatedAt = nil
			if err := sm.putCredentialRecord(ctx, secretstore.CredentialPath(r.ClientID), oldRecord); err != nil {
				return err
			}
			if err := sm.store.DeleteSecret(ctx, secretstore.CredentialVersionPath(r.ClientID, r.NewVersion)); err != nil {
				return err
			}
			return sm.store.DeleteSecret(ctx, secretstore.TransitionPath(r.ClientID))

		default:
			return errors.New(errors.KindInvalidStateTrans, "rotation already terminal")
		}
	})
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	r.CurrentState = StateFailed
	r.Status = StateFailed
	now := time.Now()
	r.CompletedAt = &now
	sm.mu.Unlock()

	logx.Infof("rotation %s failed from %s for client %s: %s", rotationID, fromState, r.ClientID, reason)
	return r, nil
}

// transition validates the DAG edge, takes the distributed lease, runs
// sideEffect, and only then commits the new state — so a failure
// midway through sideEffect leaves the rotation in its prior state
// rather than a half-applied one.
func (sm *StateMachine) transition(ctx context.Context, rotationID string, to State, sideEffect func(ctx context.Context, r *Record) error) (*Record, error) {
	sm.mu.Lock()
	r, ok := sm.byRotationID[rotationID]
	sm.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.KindValidation, "unknown rotation")
	}

	if r.CurrentState == to {
		// Idempotent: applying the same transition twice is a no-op
		// (spec §8 round-trip law).
		return r, nil
	}
	if !CanTransition(r.CurrentState, to) {
		return nil, errors.New(errors.KindInvalidStateTrans, "illegal rotation transition")
	}

	err := withLease(ctx, sm.cache, r.ClientID, func(ctx context.Context) error {
		return sideEffect(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	r.CurrentState = to
	r.Status = to
	sm.mu.Unlock()

	return r, nil
}

func (sm *StateMachine) fetchActiveRecord(ctx context.Context, clientID string) (*credential.Record, error) {
	return sm.getCredentialRecord(ctx, secretstore.CredentialPath(clientID))
}

func (sm *StateMachine) getCredentialRecord(ctx context.Context, path string) (*credential.Record, error) {
	raw, err := sm.store.GetSecret(ctx, path)
	if err != nil {
		return nil, err
	}
	var record credential.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "decode credential record", err)
	}
	return &record, nil
}

func (sm *StateMachine) putCredentialRecord(ctx context.Context, path string, record *credential.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(errors.KindInternal, "encode credential record", err)
	}
	return sm.store.PutSecret(ctx, path, raw)
}

func (sm *StateMachine) getTransitionRecord(ctx context.Context, clientID string) (*TransitionRecord, error) {
	raw, err := sm.store.GetSecret(ctx, secretstore.TransitionPath(clientID))
	if err != nil {
		return nil, err
	}
	var tr TransitionRecord
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, errors.Wrap(errors.KindInternal, "decode transition record", err)
	}
	return &tr, nil
}

func (sm *StateMachine) putTransitionRecord(ctx context.Context, tr *TransitionRecord) error {
	raw, err := json.Marshal(tr)
	if err != nil {
		return errors.Wrap(errors.KindInternal, "encode transition record", err)
	}
	return sm.store.PutSecret(ctx, secretstore.TransitionPath(tr.ClientID), raw)
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(errors.KindInternal, "generate secret", err)
	}
	return hex.EncodeToString(buf), nil
}

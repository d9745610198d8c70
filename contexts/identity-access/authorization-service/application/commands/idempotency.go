package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/ports"
)

// idempotencyKeyPrefix namespaces this service's records in a shared
// idempotency store.
const idempotencyKeyPrefix = "authz_idempotency:"

const defaultIdempotencyTTL = 7 * 24 * time.Hour

// hashRequest fingerprints the semantic request body so a reused key with
// different input is detected as a conflict.
func hashRequest(payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// storedResponse returns the recorded response payload for a key. A key hit
// with a different request hash is a conflict, never a replay.
func storedResponse(
	ctx context.Context,
	store ports.IdempotencyStore,
	key string,
	requestHash string,
	now time.Time,
) ([]byte, bool, error) {
	record, found, err := store.GetRecord(ctx, key, now)
	if err != nil || !found {
		return nil, false, err
	}
	if record.RequestHash != requestHash {
		return nil, false, domainerrors.ErrIdempotencyConflict
	}
	return record.ResponsePayload, true, nil
}

// rememberResponse stores the response payload for later replays of the key.
func rememberResponse(
	ctx context.Context,
	store ports.IdempotencyStore,
	key string,
	operation string,
	requestHash string,
	result any,
	expiresAt time.Time,
) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return store.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             key,
		Operation:       operation,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       expiresAt,
	})
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetToken implements storage.TokenProvider over the access_tokens table.
// A missing row or an expired token both report ok=false.
func (a *Adapter) GetToken(ctx context.Context, callerID string) (string, bool, error) {
	if callerID == "" {
		return "", false, nil
	}

	var (
		token     string
		expiresAt sql.NullTime
	)
	err := a.stmtGetToken.QueryRowContext(ctx, callerID).Scan(&token, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read access token: %w", err)
	}

	if token == "" {
		return "", false, nil
	}
	if expiresAt.Valid && !expiresAt.Time.After(a.nowFn()) {
		return "", false, nil
	}
	return token, true, nil
}

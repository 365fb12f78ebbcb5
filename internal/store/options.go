// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-render/internal/model"
	"github.com/olegiv/ocms-render/internal/util"
)

// Option owner kinds stored in options.owner_kind.
const (
	ownerLayout      = "layout"
	ownerPage        = "page"
	ownerContent     = "content"
	ownerPageContent = "page_content"
)

// listOptions loads the options of the given owners, keyed by owner ID, in
// their declared order.
func (q *Queries) listOptions(ctx context.Context, ownerKind string, ownerIDs []uuid.UUID) (map[uuid.UUID][]model.Option, error) {
	out := make(map[uuid.UUID][]model.Option, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	in, args := inClause(ownerIDs, func(id uuid.UUID) any { return id.String() })
	rows, err := q.db.QueryContext(ctx, `
		SELECT owner_id, key, type, custom_identifier, value, default_value
		FROM options
		WHERE owner_kind = ? AND owner_id IN `+in+`
		ORDER BY owner_id, position, key`, append([]any{ownerKind}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("loading %s options: %w", ownerKind, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			owner uuid.UUID
			o     model.Option
			typ   string
			value sql.NullString
		)
		if err := rows.Scan(&owner, &o.Key, &typ, &o.CustomIdentifier, &value, &o.DefaultValue); err != nil {
			return nil, fmt.Errorf("scanning %s option: %w", ownerKind, err)
		}
		o.Type = model.OptionType(typ)
		o.Value = util.StringPtr(value)
		out[owner] = append(out[owner], o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading %s options: %w", ownerKind, err)
	}
	return out, nil
}

// ReplaceOptions replaces every option of an owner.
func (q *Queries) ReplaceOptions(ctx context.Context, ownerKind string, ownerID uuid.UUID, opts []model.Option) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM options WHERE owner_kind = ? AND owner_id = ?`, ownerKind, ownerID); err != nil {
		return fmt.Errorf("clearing %s options: %w", ownerKind, err)
	}
	for i, o := range opts {
		custom := ""
		if o.Type == model.OptionTypeCustom {
			custom = o.CustomIdentifier
		}
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO options (owner_kind, owner_id, key, type, custom_identifier, value, default_value, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ownerKind, ownerID, o.Key, string(o.Type), custom, util.NullStringFromPtr(o.Value), o.DefaultValue, i)
		if err != nil {
			return fmt.Errorf("inserting %s option %s: %w", ownerKind, o.Identity(), err)
		}
	}
	return nil
}

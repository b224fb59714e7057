// Package repo provides the scan repository implementation.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codesweep/internal/modkit/repokit"
	perr "codesweep/internal/platform/errors"
	"codesweep/internal/platform/store"
	"codesweep/internal/services/scan/domain"

	"github.com/google/uuid"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage bundles the persistence collaborators the scan service needs
type Storage interface {
	domain.TargetStore
	domain.EventSink
}

func scanTarget(r store.Row) (domain.ScannedTarget, error) {
	var t domain.ScannedTarget
	err := r.Scan(&t.ID, &t.RepoURL, &t.FullName, &t.Owner, &t.CloneURL, &t.Language,
		&t.Visibility, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanFinding(r store.Row) (domain.Finding, error) {
	var f domain.Finding
	err := r.Scan(&f.ID, &f.TaskID, &f.Source, &f.Severity, &f.Type, &f.Term, &f.Score,
		&f.FileName, &f.FileURL, &f.CodeFragment, &f.MatchLocation, &f.KeySuffix, &f.CreatedAt)
	return f, err
}

// GetByURL implements domain.TargetStore
func (s *pg) GetByURL(ctx context.Context, repoURL string) (domain.ScannedTarget, error) {
	t, err := store.One(ctx, s.q, scanTarget, `
		SELECT id::text, repo_url, full_name, owner_login, clone_url, language, visibility, created_at, updated_at
		FROM scan_targets
		WHERE repo_url = $1`,
		repoURL,
	)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.ScannedTarget{}, perr.ErrNotFound
		}
		return domain.ScannedTarget{}, perr.FromPostgres(err, "scan_targets get by url")
	}

	t.Findings, err = store.Many(ctx, s.q, scanFinding, `
		SELECT id::text, task_id, source, severity, type, term, score, file_name, file_url,
			code_fragment, match_location, key_suffix, created_at
		FROM findings
		WHERE target_id = $1::uuid
		ORDER BY created_at, id`,
		t.ID,
	)
	if err != nil {
		return domain.ScannedTarget{}, perr.FromPostgres(err, "findings list")
	}
	return t, nil
}

// Create implements domain.TargetStore
// the target row and its initial findings land atomically when the bound
// queryer can open transactions
func (s *pg) Create(ctx context.Context, t domain.ScannedTarget) (domain.ScannedTarget, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	if tx, ok := s.q.(repokit.TxRunner); ok {
		err := repokit.WithTx(ctx, tx, func(q repokit.Queryer) error {
			return createIn(ctx, q, t)
		})
		if err != nil {
			return domain.ScannedTarget{}, err
		}
		return t, nil
	}
	if err := createIn(ctx, s.q, t); err != nil {
		return domain.ScannedTarget{}, err
	}
	return t, nil
}

func createIn(ctx context.Context, q repokit.Queryer, t domain.ScannedTarget) error {
	_, err := q.Exec(ctx, `
		INSERT INTO scan_targets
			(id, repo_url, full_name, owner_login, clone_url, language, visibility, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.RepoURL, t.FullName, t.Owner, t.CloneURL, t.Language, t.Visibility, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return perr.FromPostgres(err, "scan_targets insert")
	}
	return insertFindings(ctx, q, t.ID, t.Findings)
}

// Update implements domain.TargetStore
// metadata is refreshed and any new findings are appended; existing finding
// ids conflict away so re-sending a merged collection is safe
func (s *pg) Update(ctx context.Context, t domain.ScannedTarget) error {
	err := store.ExecOne(ctx, s.q, `
		UPDATE scan_targets
		SET full_name = $2, owner_login = $3, clone_url = $4, language = $5, visibility = $6, updated_at = $7
		WHERE id = $1::uuid`,
		t.ID, t.FullName, t.Owner, t.CloneURL, t.Language, t.Visibility, time.Now().UTC(),
	)
	if err != nil {
		return perr.FromPostgres(err, "scan_targets update")
	}
	return insertFindings(ctx, s.q, t.ID, t.Findings)
}

func insertFindings(ctx context.Context, q repokit.Queryer, targetID string, xs []domain.Finding) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO findings
		(id, target_id, task_id, source, severity, type, term, score, file_name, file_url,
		code_fragment, match_location, key_suffix, created_at) VALUES `)

	args := make([]any, 0, len(xs)*14)
	for i, f := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*14 + 1
		fmt.Fprintf(&sb, "($%d::uuid,$%d::uuid,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11, base+12, base+13)

		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = time.Now().UTC()
		}
		args = append(args,
			f.ID, targetID, f.TaskID, f.Source, f.Severity, f.Type, f.Term,
			f.Score, f.FileName, f.FileURL, f.CodeFragment, f.MatchLocation, f.KeySuffix, f.CreatedAt,
		)
	}
	// Re-sent findings from a merged collection no-op
	sb.WriteString(` ON CONFLICT (id) DO NOTHING`)
	_, err := q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return perr.FromPostgres(err, "findings insert")
	}
	return nil
}

// Record implements domain.EventSink
func (s *pg) Record(ctx context.Context, taskID string, severity domain.Severity, message string) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO scan_events (id, task_id, severity, message, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5)`,
		uuid.NewString(), taskID, severity, message, time.Now().UTC(),
	)
	if err != nil {
		return perr.FromPostgres(err, "scan_events insert")
	}
	return nil
}

package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lyre-server/internal/app/model"
	"lyre-server/internal/app/repository"
)

type folderDAO struct {
	db *sql.DB
}

func (d *folderDAO) Create(ctx context.Context, f *model.Folder) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.Icon == "" {
		f.Icon = "folder"
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO folders (id, name, icon, created_at) VALUES ($1, $2, $3, $4)`,
		f.ID, f.Name, f.Icon, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (d *folderDAO) List(ctx context.Context) ([]model.Folder, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, icon, created_at FROM folders ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Icon, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (d *folderDAO) Update(ctx context.Context, id, name, icon string) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE folders SET name = $1, icon = $2 WHERE id = $3`, name, icon, id)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *folderDAO) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type tagDAO struct {
	db *sql.DB
}

func (d *tagDAO) Create(ctx context.Context, t *model.Tag) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)`,
		t.ID, t.Name, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (d *tagDAO) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (d *tagDAO) Update(ctx context.Context, id, name string) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE tags SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (d *tagDAO) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type settingsDAO struct {
	db *sql.DB
}

func (d *settingsDAO) Get(ctx context.Context) (*model.Settings, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT summary_enabled, language_hint FROM settings WHERE id = 1`)
	var s model.Settings
	if err := row.Scan(&s.SummaryEnabled, &s.LanguageHint); err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return &s, nil
}

func (d *settingsDAO) Update(ctx context.Context, s *model.Settings) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE settings SET summary_enabled = $1, language_hint = $2 WHERE id = 1`,
		s.SummaryEnabled, s.LanguageHint)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

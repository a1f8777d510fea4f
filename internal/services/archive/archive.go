// Package archive 以 JSONL + tar.gz 导出和导入用户与图片记录，可用于备份或在不同后端之间迁移
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/anoixa/photo-share/database/models"
	"github.com/anoixa/photo-share/database/repo"
)

const (
	formatVersion = "1.0"
	metadataFile  = "metadata.json"
	usersFile     = "users.jsonl"
	photosFile    = "photos.jsonl"
)

// Metadata 归档元数据
type Metadata struct {
	Version     string           `json:"version"`
	Timestamp   time.Time        `json:"timestamp"`
	Database    string           `json:"database"`
	RecordCount map[string]int64 `json:"record_count"`
}

// Source 导出所需的仓库
type Source interface {
	Users() repo.UserRepository
	Photos() repo.PhotoRepository
	Name() string
}

// userRecord 用户的完整记录，包含密码哈希
type userRecord struct {
	ID          string    `json:"_id"`
	LoginName   string    `json:"login_name"`
	Password    string    `json:"password"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Occupation  string    `json:"occupation"`
	CreatedAt   time.Time `json:"created_at"`
}

func recordOf(u *models.User) userRecord {
	return userRecord{
		ID:          u.ID,
		LoginName:   u.LoginName,
		Password:    u.Password,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Location:    u.Location,
		Description: u.Description,
		Occupation:  u.Occupation,
		CreatedAt:   u.CreatedAt,
	}
}

func (r userRecord) model() *models.User {
	return &models.User{
		ID:          r.ID,
		LoginName:   r.LoginName,
		Password:    r.Password,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Location:    r.Location,
		Description: r.Description,
		Occupation:  r.Occupation,
		CreatedAt:   r.CreatedAt,
	}
}

// Export 将全部用户与图片（含评论）写入 w
func Export(ctx context.Context, src Source, w io.Writer) (*Metadata, error) {
	users, err := src.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	photos, err := src.Photos().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	var usersBuf, photosBuf bytes.Buffer
	enc := json.NewEncoder(&usersBuf)
	for _, u := range users {
		if err := enc.Encode(recordOf(u)); err != nil {
			return nil, err
		}
	}
	enc = json.NewEncoder(&photosBuf)
	for _, p := range photos {
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
	}

	meta := &Metadata{
		Version:   formatVersion,
		Timestamp: time.Now(),
		Database:  src.Name(),
		RecordCount: map[string]int64{
			"users":  int64(len(users)),
			"photos": int64(len(photos)),
		},
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}

	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{metadataFile, metaBytes},
		{usersFile, usersBuf.Bytes()},
		{photosFile, photosBuf.Bytes()},
	} {
		header := &tar.Header{
			Name:    entry.name,
			Mode:    0644,
			Size:    int64(len(entry.data)),
			ModTime: meta.Timestamp,
		}
		if err := tw.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("failed to write %s header: %w", entry.name, err)
		}
		if _, err := tw.Write(entry.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", entry.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return meta, nil
}

// ImportStats 导入统计
type ImportStats struct {
	Metadata      Metadata
	Users         int
	Photos        int
	SkippedUsers  int
	SkippedPhotos int
}

// Import 读取归档并写入目标后端，已存在的记录跳过
func Import(ctx context.Context, dst Source, r io.Reader) (*ImportStats, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid archive: %w", err)
	}
	defer gz.Close()

	entries := make(map[string][]byte)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		entries[header.Name] = data
	}

	stats := &ImportStats{}
	metaBytes, ok := entries[metadataFile]
	if !ok {
		return nil, fmt.Errorf("archive has no %s", metadataFile)
	}
	if err := json.Unmarshal(metaBytes, &stats.Metadata); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	if stats.Metadata.Version != formatVersion {
		return nil, fmt.Errorf("unsupported archive version %q", stats.Metadata.Version)
	}

	err = eachLine(entries[usersFile], func(line []byte) error {
		var rec userRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("invalid user record: %w", err)
		}
		err := dst.Users().Insert(ctx, rec.model())
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			stats.SkippedUsers++
		case err != nil:
			return fmt.Errorf("failed to import user %s: %w", rec.ID, err)
		default:
			stats.Users++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	err = eachLine(entries[photosFile], func(line []byte) error {
		var photo models.Photo
		if err := json.Unmarshal(line, &photo); err != nil {
			return fmt.Errorf("invalid photo record: %w", err)
		}
		if photo.Comments == nil {
			photo.Comments = []models.Comment{}
		}
		err := dst.Photos().Insert(ctx, &photo)
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			stats.SkippedPhotos++
		case err != nil:
			return fmt.Errorf("failed to import photo %s: %w", photo.ID, err)
		default:
			stats.Photos++
		}
		return nil
	})
	return stats, err
}

func eachLine(data []byte, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

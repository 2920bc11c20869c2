package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/config"
	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
)

// SnapshotStore keeps finished snapshot files somewhere durable.
type SnapshotStore interface {
	// Save stores the file at src under name and returns where it ended up.
	Save(ctx context.Context, name, src string) (string, error)
}

// DirStore copies snapshots into a local directory.
type DirStore struct {
	Dir string
}

func (s DirStore) Save(_ context.Context, name, src string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", errs.NewSnapshotError(s.Dir, err)
	}
	dest := filepath.Join(s.Dir, name)
	if err := copyFile(dest, src); err != nil {
		return "", errs.NewSnapshotError(dest, err)
	}
	return dest, nil
}

// S3PutObjectAPI is the part of the S3 client snapshots need.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads snapshots to a bucket under Prefix.
type S3Store struct {
	Client S3PutObjectAPI
	Bucket string
	Prefix string
}

func (s S3Store) Save(ctx context.Context, name, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", errs.NewSnapshotError(src, err)
	}
	defer f.Close()

	key := path.Join(s.Prefix, name)
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	location := fmt.Sprintf("s3://%s/%s", s.Bucket, key)
	if err != nil {
		return "", errs.NewSnapshotError(location, err)
	}
	return location, nil
}

// NewSnapshotStore picks S3 when BACKUP_S3_BUCKET is set and BACKUP_DIR otherwise.
func NewSnapshotStore(ctx context.Context, cfg map[string]string) (SnapshotStore, error) {
	bucket := config.GetString(cfg, "BACKUP_S3_BUCKET", "")
	if bucket == "" {
		return DirStore{Dir: config.GetString(cfg, "BACKUP_DIR", "backup")}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errs.NewConfigError("aws", err)
	}
	return S3Store{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: bucket,
		Prefix: config.GetString(cfg, "BACKUP_S3_PREFIX", "planner"),
	}, nil
}

// Backups produces consistent copies of the planner database.
type Backups struct {
	db     database.Database
	store  SnapshotStore
	clock  Clock
	logger zerolog.Logger
}

func NewBackups(db database.Database, store SnapshotStore, clock Clock) *Backups {
	return &Backups{
		db:     db,
		store:  store,
		clock:  clock,
		logger: log.With().Str("service", "backups").Logger(),
	}
}

// FileName names a snapshot after the time it was taken.
func (b *Backups) FileName() string {
	return "planner-" + b.clock.Now().UTC().Format("20060102-150405") + ".sqlite"
}

// WriteTo streams a fresh snapshot to w.
func (b *Backups) WriteTo(ctx context.Context, w io.Writer) error {
	return b.withSnapshot(ctx, func(src string) error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

// Snapshot takes a snapshot and hands it to the configured store.
func (b *Backups) Snapshot(ctx context.Context) (string, error) {
	var location string
	err := b.withSnapshot(ctx, func(src string) error {
		var err error
		location, err = b.store.Save(ctx, b.FileName(), src)
		return err
	})
	if err != nil {
		return "", err
	}
	b.logger.Info().Str("location", location).Msg("Stored database snapshot")
	return location, nil
}

func (b *Backups) withSnapshot(ctx context.Context, fn func(src string) error) error {
	dir, err := os.MkdirTemp("", "planner-snapshot-")
	if err != nil {
		return errs.NewSnapshotError("temp dir", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "snapshot.sqlite")
	if err := b.db.Snapshot(ctx, src); err != nil {
		return err
	}
	return fn(src)
}

func copyFile(dest, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

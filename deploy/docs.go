package deploy

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/pkg"
)

// NewDocsAction uploads the human-readable documentation tree to an
// S3-compatible bucket, one object per file, keyed under the resolved
// version.
func NewDocsAction(cfg pkg.StoreConfig, docRoot string) (Action, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create object store client: %w", err)
	}

	return &docsAction{
		mc:      mc,
		bucket:  cfg.Bucket,
		docRoot: docRoot,
	}, nil
}

type docsAction struct {
	mc      *minio.Client
	bucket  string
	docRoot string
}

func (a *docsAction) Name() string {
	return "publish-docs"
}

func (a *docsAction) Run(ctx context.Context, run *pkg.Run) error {
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("unable to ensure docs bucket: %w", err)
	}

	count := 0
	err := filepath.WalkDir(a.docRoot, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(a.docRoot, file)
		if err != nil {
			return err
		}

		key := path.Join(run.Version, filepath.ToSlash(rel))
		contentType := mime.TypeByExtension(filepath.Ext(file))

		if _, err := a.mc.FPutObject(ctx, a.bucket, key, file, minio.PutObjectOptions{
			ContentType: contentType,
		}); err != nil {
			return fmt.Errorf("unable to upload %s: %w", key, err)
		}

		count++
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int("objects", count).Str("bucket", a.bucket).Str("version", run.Version).Msg("documentation published")
	return nil
}

func (a *docsAction) ensureBucket(ctx context.Context) error {
	exists, err := a.mc.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return a.mc.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
}

// Package publish 把输出目录同步到 S3 兼容的对象存储（DigitalOcean Spaces）
package publish

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	appconfig "AuctionSync/internal/config"
	"AuctionSync/internal/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// 不对外发布的文件
var privateFiles = map[string]bool{
	"meta/quota.json": true,
}

// ObjectPutter s3.Client 中用到的部分
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type SpacesPublisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *logrus.Logger
}

// NewSpacesPublisher 按配置创建 Spaces 客户端
func NewSpacesPublisher(ctx context.Context, cfg *appconfig.SpacesConfig, logger *logrus.Logger) (interfaces.Publisher, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: endpoint}, nil
	})

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("加载Spaces配置失败: %w", err)
	}
	return NewPublisher(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix, logger), nil
}

// NewPublisher 使用现成的客户端创建发布器
func NewPublisher(client ObjectPutter, bucket, prefix string, logger *logrus.Logger) *SpacesPublisher {
	return &SpacesPublisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// PublishDir 上传 dir 下的 JSON 与 xlsx 文件，返回上传数量
// 隐藏文件（含写入中的临时文件）与配额文件不上传
func (p *SpacesPublisher) PublishDir(ctx context.Context, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(full string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(d.Name(), ".") && full != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".json" && ext != ".xlsx" {
			return nil
		}
		rel, err := filepath.Rel(dir, full)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if privateFiles[rel] {
			return nil
		}
		if err := p.upload(ctx, full, p.objectKey(rel), ext); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("发布输出目录失败: %w", err)
	}
	p.logger.WithFields(logrus.Fields{"bucket": p.bucket, "objects": uploaded}).Info("输出目录已上传")
	return uploaded, nil
}

func (p *SpacesPublisher) objectKey(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

func (p *SpacesPublisher) upload(ctx context.Context, full, key, ext string) error {
	file, err := os.Open(full)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := mime.TypeByExtension(ext)
	if ext == ".json" {
		contentType = "application/json; charset=utf-8"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         file,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=300"),
		ACL:          types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("上传%s失败: %w", key, err)
	}
	p.logger.WithField("key", key).Debug("已上传")
	return nil
}

package core

import "context"

// RedisArchive exposes the redis stores through the lookups the mailer
// needs.
type RedisArchive struct{}

func (RedisArchive) GetComment(ctx context.Context, id int64) (Comment, error) {
	return GetComment(ctx, id)
}

func (RedisArchive) GetAdminPost(ctx context.Context, id int64) (AdminPost, error) {
	return GetAdminPost(ctx, id)
}

func (RedisArchive) ResolveLogin(ctx context.Context, id int64) (string, error) {
	return ResolveLogin(ctx, id)
}

func (RedisArchive) ResolveWorkTitle(ctx context.Context, id int64) (string, error) {
	return ResolveWorkTitle(ctx, id)
}

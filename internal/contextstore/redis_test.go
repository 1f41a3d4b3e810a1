// internal/contextstore/redis_test.go
package contextstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livestock-advisor/internal/models"
)

func TestRedisRepository_GetMissingSessionIsNotAnError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewRedisRepository(client)

	mock.ExpectGet("session:ghost").RedisNil()

	cc, err := repo.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, cc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_GetPropagatesBackendErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewRedisRepository(client)

	mock.ExpectGet("session:s1").SetErr(errors.New("connection refused"))

	cc, err := repo.Get(context.Background(), "s1")
	assert.Error(t, err)
	assert.Nil(t, cc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_PutSetsKeyWithTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewRedisRepository(client)

	cc := models.NewConversationContext("s2")
	payload, err := json.Marshal(cc)
	require.NoError(t, err)

	mock.ExpectSet("session:s2", payload, 10*time.Minute).SetVal("OK")

	err = repo.Put(context.Background(), cc, 10*time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_DeleteRemovesKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewRedisRepository(client)

	mock.ExpectDel("session:s3").SetVal(1)

	err := repo.Delete(context.Background(), "s3")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

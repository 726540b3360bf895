package store

import (
	"github.com/ravell-app/tg-bridge/types"
)

// RedisBindQueue holds backend bind notifications that could not be delivered
// inline and wait for the sync workers.
type RedisBindQueue struct {
	client *RedisClient
}

func NewRedisBindQueue(client *RedisClient) *RedisBindQueue {
	return &RedisBindQueue{client: client}
}

func (q *RedisBindQueue) key() string {
	return q.client.generateKey("bind_sync")
}

func (q *RedisBindQueue) Enqueue(job types.BindJob) error {
	return q.client.PushJSON(q.key(), job)
}

func (q *RedisBindQueue) Dequeue() (*types.BindJob, error) {
	var job types.BindJob
	ok, err := q.client.PopJSON(q.key(), &job)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (q *RedisBindQueue) Len() (int64, error) {
	return q.client.ListLen(q.key())
}

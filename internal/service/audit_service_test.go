package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/domain"
)

func TestAuditRecordPublishes(t *testing.T) {
	repo := &fakeAuditRepo{}
	publisher := &fakePublisher{}
	svc := NewAuditService(repo, publisher, zap.NewNop())
	ctx := context.Background()
	id := int64(5)

	svc.Record(ctx, domain.SystemActor, domain.ActionAdjustQuantity, domain.EntityInventory, &id, "adjusted")

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "system", repo.entries[0].CreatedBy)
	assert.Nil(t, repo.entries[0].UserID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "audit.inventory.adjust_quantity", publisher.events[0].routingKey)
	event, ok := publisher.events[0].payload.(AuditEvent)
	require.True(t, ok)
	assert.Equal(t, repo.entries[0].ID, event.ID)
	assert.Equal(t, &id, event.EntityID)
}

func TestAuditRecordSurvivesPublishFailure(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, &fakePublisher{err: errors.New("broker down")}, zap.NewNop())

	svc.Record(context.Background(), domain.AnonymousActor, domain.ActionSignUp, domain.EntityUser, nil, "")

	assert.Len(t, repo.entries, 1)
}

func TestAuditWithoutPublisher(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil, zap.NewNop())

	svc.Record(context.Background(), domain.SystemActor, domain.ActionCreate, domain.EntityInventory, nil, "")

	assert.Len(t, repo.entries, 1)
}

func TestAuditQueries(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(repo, nil, zap.NewNop())
	ctx := context.Background()
	one, two := int64(1), int64(2)

	svc.Record(ctx, domain.SystemActor, domain.ActionCreate, domain.EntityInventory, &one, "")
	svc.Record(ctx, domain.SystemActor, domain.ActionUpdate, domain.EntityInventory, &one, "")
	svc.Record(ctx, domain.SystemActor, domain.ActionCreate, domain.EntityInboundOrder, &two, "")

	history, err := svc.EntityHistory(ctx, "inventory", 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionUpdate, history[0].Action)

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	actions, entityTypes, err := svc.Facets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ActionCreate, domain.ActionUpdate}, actions)
	assert.Equal(t, []string{domain.EntityInboundOrder, domain.EntityInventory}, entityTypes)

	from, to := time.Now(), time.Now().Add(-time.Hour)
	_, err = svc.Search(ctx, domain.AuditFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/buildsite-platform/stock-service/internal/domain"
)

func newFanoutTransfer() *domain.TransferRequest {
	return &domain.TransferRequest{
		ID:          primitive.NewObjectID(),
		Item:        cementBags,
		Quantity:    4,
		FromSiteID:  domain.CompanyHolder,
		ToSiteID:    "site-1",
		RequestedBy: "user-1",
		Status:      domain.TransferRequested,
	}
}

func TestBroadcastRequestedCreatesOnePerAdmin(t *testing.T) {
	admins := &fakeAdminDirectory{admins: []string{"admin-1", "admin-2", "admin-3"}}
	store := &fakeNotificationStore{}
	fanout := NewNotificationFanout(admins, store, testMetrics(), testLogger())
	transfer := newFanoutTransfer()

	fanout.BroadcastRequested(context.Background(), transfer)

	require.Len(t, store.created, 3)
	for i, admin := range admins.admins {
		assert.Equal(t, admin, store.created[i].Recipient)
		assert.Equal(t, NotificationTypeTransfer, store.created[i].Type)
		assert.Equal(t, transfer.ID.Hex(), store.created[i].RelatedID)
		assert.Equal(t, string(domain.TransferRequested), store.created[i].Status)
	}
}

func TestBroadcastRequestedSwallowsFailures(t *testing.T) {
	admins := &fakeAdminDirectory{listErr: assert.AnError}
	store := &fakeNotificationStore{}
	fanout := NewNotificationFanout(admins, store, testMetrics(), testLogger())

	// must not panic or propagate
	fanout.BroadcastRequested(context.Background(), newFanoutTransfer())
	assert.Empty(t, store.created)
}

func TestMarkDecisionUpdatesAndNotifiesRequester(t *testing.T) {
	admins := &fakeAdminDirectory{admins: []string{"admin-1"}}
	store := &fakeNotificationStore{}
	fanout := NewNotificationFanout(admins, store, testMetrics(), testLogger())

	transfer := newFanoutTransfer()
	require.NoError(t, transfer.Approve("admin-1"))

	fanout.MarkDecision(context.Background(), transfer)

	require.Len(t, store.updates, 1)
	assert.Equal(t, transfer.ID.Hex(), store.updates[0].relatedID)
	assert.Equal(t, string(domain.TransferApproved), store.updates[0].status)

	require.Len(t, store.created, 1)
	assert.Equal(t, "user-1", store.created[0].Recipient)
	assert.Equal(t, string(domain.TransferApproved), store.created[0].Status)
}

func TestMarkDecisionContinuesPastUpdateFailure(t *testing.T) {
	admins := &fakeAdminDirectory{admins: []string{"admin-1"}}
	store := &fakeNotificationStore{updateErr: assert.AnError}
	fanout := NewNotificationFanout(admins, store, testMetrics(), testLogger())

	transfer := newFanoutTransfer()
	require.NoError(t, transfer.Reject("admin-1"))

	fanout.MarkDecision(context.Background(), transfer)

	// the requester is still notified even when the bulk update failed
	require.Len(t, store.created, 1)
	assert.Equal(t, "user-1", store.created[0].Recipient)
}

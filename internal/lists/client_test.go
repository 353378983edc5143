// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package lists_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/awardsync/internal/lists"
	"github.com/tomtom215/awardsync/internal/lists/liststest"
	"github.com/tomtom215/awardsync/internal/models"
	"github.com/tomtom215/awardsync/internal/restclient"
)

var testIDs = lists.ListIDs{
	Voters:        "list-voters",
	Nominees:      "list-nominees",
	Nominators:    "list-nominators",
	NominatorLive: "list-live",
}

func newTestClient(t *testing.T, knownLists ...string) (*lists.Client, *liststest.Server) {
	t.Helper()
	srv := liststest.NewServer(t, knownLists...)
	api := restclient.New(restclient.Options{
		Platform:    "lists",
		BaseURL:     srv.URL,
		Token:       "lists-key",
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	})
	return lists.New(api, testIDs, "World Staffing Awards 2026", 2026), srv
}

func TestUpsertContact_CreateThenMergeRoles(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	first, err := client.UpsertContact(ctx, lists.Contact{Email: "A@Biz.com", FirstName: "Alex"}, models.RoleNominator,
		map[string]bool{testIDs.Nominators: true})
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.Len(t, srv.CallsTo(http.MethodPost, "/contacts/create"), 1)

	second, err := client.UpsertContact(ctx, lists.Contact{Email: "a@biz.com"}, models.RoleVoter,
		map[string]bool{testIDs.Voters: true})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)

	stored := srv.Contact("a@biz.com")
	assert.Equal(t, "Nominator;Voter", stored["wsaRoles"])
	assert.Equal(t, "Alex", stored["firstName"], "update without firstName keeps it")
	assert.Equal(t, "World Staffing Awards 2026", stored["source"])
	assert.True(t, srv.Subscribed("a@biz.com", testIDs.Nominators))
	assert.True(t, srv.Subscribed("a@biz.com", testIDs.Voters))
	assert.Equal(t, 1, srv.Count())

	updates := srv.CallsTo(http.MethodPut, "/contacts/update")
	require.Len(t, updates, 1)
	assert.NotContains(t, updates[0].Body, "firstName")
	assert.NotEmpty(t, updates[0].IdempotencyKey)
}

func TestUpsertContact_UserGroupSetOnCreateOnly(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	_, err := client.UpsertContact(ctx, lists.Contact{Email: "a@biz.com", UserGroup: "Nominator"}, models.RoleNominator, nil)
	require.NoError(t, err)
	_, err = client.UpsertContact(ctx, lists.Contact{Email: "a@biz.com", UserGroup: "Voter"}, models.RoleVoter, nil)
	require.NoError(t, err)

	assert.Equal(t, "Nominator", srv.Contact("a@biz.com")["userGroup"])
	updates := srv.CallsTo(http.MethodPut, "/contacts/update")
	require.Len(t, updates, 1)
	assert.NotContains(t, updates[0].Body, "userGroup")

	bare := "bare@biz.com"
	_, err = client.UpsertContact(ctx, lists.Contact{Email: bare}, models.RoleVoter, nil)
	require.NoError(t, err)
	_, err = client.UpsertContact(ctx, lists.Contact{Email: bare, UserGroup: "Voter"}, models.RoleVoter, nil)
	require.NoError(t, err)
	assert.Equal(t, "Voter", srv.Contact(bare)["userGroup"], "a contact without a group gets one")
}

func TestUpsertContact_LookupFailureStillWrites(t *testing.T) {
	client, srv := newTestClient(t)
	srv.FailPath(http.MethodGet, "/contacts/find", http.StatusBadGateway)

	res, err := client.UpsertContact(context.Background(), lists.Contact{Email: "v@biz.com"}, models.RoleVoter, nil)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Len(t, srv.CallsTo(http.MethodGet, "/contacts/find"), 3, "lookup retried up to the list ceiling")
}

func TestUpsertContact_CreateConflict(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()
	_, err := client.UpsertContact(ctx, lists.Contact{Email: "dup@biz.com"}, models.RoleNominator, nil)
	require.NoError(t, err)

	srv.FailPath(http.MethodGet, "/contacts/find", http.StatusBadRequest)
	_, err = client.UpsertContact(ctx, lists.Contact{Email: "dup@biz.com"}, models.RoleVoter, nil)
	require.Error(t, err, "roles cannot be merged without reading the contact")
	assert.Equal(t, http.StatusConflict, restclient.StatusOf(err))
	assert.Equal(t, "Nominator", srv.Contact("dup@biz.com")["wsaRoles"])

	srv.FailPath(http.MethodGet, "/contacts/find", 0)
	res, err := client.UpsertContact(ctx, lists.Contact{Email: "dup@biz.com"}, models.RoleVoter, nil)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, "Nominator;Voter", srv.Contact("dup@biz.com")["wsaRoles"])
	assert.Equal(t, 1, srv.Count())
}

func TestUpsertContact_RequiresEmail(t *testing.T) {
	client, srv := newTestClient(t)
	_, err := client.UpsertContact(context.Background(), lists.Contact{FirstName: "x"}, models.RoleVoter, nil)
	assert.ErrorIs(t, err, lists.ErrMissingEmail)
	assert.Empty(t, srv.Calls())
}

func TestMoveToLive(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()
	_, err := client.UpsertContact(ctx, lists.Contact{Email: "n@biz.com"}, models.RoleNominator, map[string]bool{testIDs.Nominators: true})
	require.NoError(t, err)
	require.True(t, srv.Subscribed("n@biz.com", testIDs.Nominators))

	require.NoError(t, client.MoveToLive(ctx, "n@biz.com"))

	assert.False(t, srv.Subscribed("n@biz.com", testIDs.Nominators))
	assert.True(t, srv.Subscribed("n@biz.com", testIDs.NominatorLive))

	updates := srv.CallsTo(http.MethodPut, "/contacts/update")
	require.Len(t, updates, 1, "membership moves in a single update")
	membership := updates[0].Body["mailingLists"].(map[string]any)
	assert.Equal(t, map[string]any{testIDs.Nominators: false, testIDs.NominatorLive: true}, membership)
}

func TestCheckLists(t *testing.T) {
	client, _ := newTestClient(t, "list-voters", "list-nominators", "list-live")

	missing, err := client.CheckLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nominees"}, missing)
}

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain/activity"
)

var (
	t0 = time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)

	histories = []activity.History{
		{Collection: "0xc1", TokenId: "1", Type: activity.HistoryTypeList, Account: "0xalice", Price: "10", EventId: "e1", Time: t0},
		{Collection: "0xc1", TokenId: "1", Type: activity.HistoryTypeBuy, Account: "0xbob", To: "0xalice", Price: "10", EventId: "e2", Time: t0.Add(time.Minute)},
		{Collection: "0xc1", TokenId: "1", Type: activity.HistoryTypeSold, Account: "0xalice", To: "0xbob", Price: "10", EventId: "e2", Time: t0.Add(time.Minute)},
		{Collection: "0xc2", TokenId: "5", Type: activity.HistoryTypeList, Account: "0xcarol", Price: "3", EventId: "e3", Time: t0.Add(2 * time.Minute)},
	}
)

// seedAndFind runs the queries every activity.Repo has to answer the same way
func seedAndFind(t *testing.T, im activity.Repo) {
	c := ctx.Background()
	for i := range histories {
		require.NoError(t, im.Insert(c, &histories[i]))
	}
	// redelivered event
	require.NoError(t, im.Insert(c, &histories[0]))

	all, err := im.FindActivities(c)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "e3", all[0].EventId, "newest first")

	byToken, err := im.FindActivities(c, activity.WithToken("0xC1", "001"))
	require.NoError(t, err)
	require.Len(t, byToken, 3)

	byAccount, err := im.FindActivities(c, activity.WithAccount("0xalice"))
	require.NoError(t, err)
	require.Len(t, byAccount, 3, "as account or counterparty")

	byType, err := im.FindActivities(c, activity.WithTypes(activity.HistoryTypeBuy, activity.HistoryTypeSold))
	require.NoError(t, err)
	require.Len(t, byType, 2)

	page, err := im.FindActivities(c, activity.WithPagination(1, 2))
	require.NoError(t, err)
	require.Len(t, page, 2)

	cnt, err := im.CountActivities(c, activity.WithTypes(activity.HistoryTypeList))
	require.NoError(t, err)
	require.Equal(t, 2, cnt)

	_, err = im.FindActivities(c, activity.WithPagination(-1, 2))
	require.Error(t, err)
}

func TestMemoryRepo(t *testing.T) {
	seedAndFind(t, NewMemoryRepo())
}

func TestMemoryRepoPastLastPage(t *testing.T) {
	im := NewMemoryRepo()
	c := ctx.Background()
	require.NoError(t, im.Insert(c, &histories[0]))

	res, err := im.FindActivities(c, activity.WithPagination(5, 10))
	require.NoError(t, err)
	require.Empty(t, res)
}

package repository

import (
	"sort"
	"sync"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain/activity"
)

type historyKey struct {
	eventId string
	typ     activity.HistoryType
}

type memoryRepo struct {
	mu        sync.RWMutex
	histories []activity.History
	seen      map[historyKey]bool
}

// NewMemoryRepo keeps the history in process memory
func NewMemoryRepo() activity.Repo {
	return &memoryRepo{
		seen: make(map[historyKey]bool),
	}
}

func (im *memoryRepo) Insert(c ctx.Ctx, h *activity.History) error {
	im.mu.Lock()
	defer im.mu.Unlock()
	k := historyKey{h.EventId, h.Type}
	if h.EventId != "" && im.seen[k] {
		return nil
	}
	im.seen[k] = true
	im.histories = append(im.histories, *h)
	return nil
}

func match(f *activity.Filter, h *activity.History) bool {
	if f.Account != nil && !h.Account.Equals(*f.Account) && !h.To.Equals(*f.Account) {
		return false
	}
	if f.Collection != nil && !h.Collection.Equals(*f.Collection) {
		return false
	}
	if f.TokenId != nil && h.TokenId != *f.TokenId {
		return false
	}
	if len(f.Types) > 0 {
		for _, t := range f.Types {
			if t == h.Type {
				return true
			}
		}
		return false
	}
	return true
}

func (im *memoryRepo) filter(optFns ...activity.FindOptions) ([]activity.History, *activity.Filter, error) {
	f, err := activity.GetFindOptions(optFns...)
	if err != nil {
		return nil, nil, err
	}

	im.mu.RLock()
	defer im.mu.RUnlock()
	res := []activity.History{}
	for i := range im.histories {
		if match(f, &im.histories[i]) {
			res = append(res, im.histories[i])
		}
	}
	return res, f, nil
}

func (im *memoryRepo) FindActivities(c ctx.Ctx, optFns ...activity.FindOptions) ([]activity.History, error) {
	res, f, err := im.filter(optFns...)
	if err != nil {
		return nil, err
	}

	// newest first, insertion order breaks ties
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Time.After(res[j].Time)
	})

	if f.Offset != nil {
		if *f.Offset >= len(res) {
			return []activity.History{}, nil
		}
		res = res[*f.Offset:]
	}
	if f.Limit != nil && *f.Limit > 0 && *f.Limit < len(res) {
		res = res[:*f.Limit]
	}
	return res, nil
}

func (im *memoryRepo) CountActivities(c ctx.Ctx, optFns ...activity.FindOptions) (int, error) {
	res, _, err := im.filter(optFns...)
	if err != nil {
		return 0, err
	}
	return len(res), nil
}

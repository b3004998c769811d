// Package storetest provides an in-memory store.Repository for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/membership/internal/models"
	"github.com/fatflowers/membership/internal/store"
	"github.com/fatflowers/membership/pkg/tool"
	"github.com/fatflowers/membership/pkg/types"
)

type state struct {
	plans        map[string]models.Subscription
	bindings     map[string]models.UserSubscription
	groups       map[string]map[string]bool
	transactions []models.Transaction
}

func (s *state) clone() *state {
	c := &state{
		plans:        make(map[string]models.Subscription, len(s.plans)),
		bindings:     make(map[string]models.UserSubscription, len(s.bindings)),
		groups:       make(map[string]map[string]bool, len(s.groups)),
		transactions: append([]models.Transaction(nil), s.transactions...),
	}
	for k, v := range s.plans {
		c.plans[k] = v
	}
	for k, v := range s.bindings {
		c.bindings[k] = v
	}
	for u, gs := range s.groups {
		c.groups[u] = make(map[string]bool, len(gs))
		for g := range gs {
			c.groups[u][g] = true
		}
	}
	return c
}

// Memory is a goroutine-safe in-memory Repository. Transaction rolls back
// all changes when fn returns an error.
type Memory struct {
	mu    *sync.Mutex
	st    *state
	inTx  bool
	clock func() time.Time
	seq   int
	// FailOn makes the named method return the error, for fault injection.
	FailOn map[string]error
	// Calls counts method invocations by name.
	Calls map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		mu: &sync.Mutex{},
		st: &state{
			plans:    map[string]models.Subscription{},
			bindings: map[string]models.UserSubscription{},
			groups:   map[string]map[string]bool{},
		},
		clock:  time.Now,
		FailOn: map[string]error{},
		Calls:  map[string]int{},
	}
}

var _ store.Repository = (*Memory)(nil)

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) enter(name string) error {
	m.Calls[name]++
	if err, ok := m.FailOn[name]; ok {
		return err
	}
	return nil
}

func (m *Memory) Transaction(ctx context.Context, fn func(repo store.Repository) error) error {
	unlock := m.lock()
	defer unlock()
	if err := m.enter("Transaction"); err != nil {
		return err
	}

	snapshot := m.st.clone()
	tx := &Memory{mu: m.mu, st: m.st, inTx: true, clock: m.clock, FailOn: m.FailOn, Calls: m.Calls}
	if err := fn(tx); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

func (m *Memory) withPlan(us models.UserSubscription) *models.UserSubscription {
	if p, ok := m.st.plans[us.SubscriptionID]; ok {
		plan := p
		us.Subscription = &plan
	}
	return &us
}

// Plans

func (m *Memory) GetPlan(ctx context.Context, id string) (*models.Subscription, error) {
	defer m.lock()()
	if err := m.enter("GetPlan"); err != nil {
		return nil, err
	}
	p, ok := m.st.plans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) GetPlanBySku(ctx context.Context, sku string) (*models.Subscription, error) {
	defer m.lock()()
	if err := m.enter("GetPlanBySku"); err != nil {
		return nil, err
	}
	for _, p := range m.st.plans {
		if p.Sku == sku {
			plan := p
			return &plan, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) FindPlansByGroups(ctx context.Context, groupIDs []string) ([]*models.Subscription, error) {
	defer m.lock()()
	if err := m.enter("FindPlansByGroups"); err != nil {
		return nil, err
	}
	var res []*models.Subscription
	for _, p := range m.st.plans {
		if lo.Contains(groupIDs, p.GroupID) {
			plan := p
			res = append(res, &plan)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (m *Memory) ListPlans(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Subscription, int64, error) {
	defer m.lock()()
	if err := m.enter("ListPlans"); err != nil {
		return nil, 0, err
	}
	all := lo.MapToSlice(m.st.plans, func(_ string, p models.Subscription) *models.Subscription { return &p })
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (m *Memory) SavePlan(ctx context.Context, plan *models.Subscription) error {
	defer m.lock()()
	if err := m.enter("SavePlan"); err != nil {
		return err
	}
	for id, p := range m.st.plans {
		if id != plan.ID && p.Sku == plan.Sku {
			return fmt.Errorf("%w: sku %s", store.ErrDuplicate, plan.Sku)
		}
	}
	if plan.ID == "" {
		plan.ID = tool.GenerateUUIDV7()
	}
	if plan.CreatedAt.IsZero() {
		m.seq++
		plan.CreatedAt = m.clock().Add(time.Duration(m.seq) * time.Microsecond)
	}
	m.st.plans[plan.ID] = *plan
	return nil
}

// Bindings

func (m *Memory) GetBinding(ctx context.Context, id string) (*models.UserSubscription, error) {
	defer m.lock()()
	if err := m.enter("GetBinding"); err != nil {
		return nil, err
	}
	us, ok := m.st.bindings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.withPlan(us), nil
}

func (m *Memory) GetBindingForUpdate(ctx context.Context, id string) (*models.UserSubscription, error) {
	defer m.lock()()
	if err := m.enter("GetBindingForUpdate"); err != nil {
		return nil, err
	}
	us, ok := m.st.bindings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.withPlan(us), nil
}

func (m *Memory) FindBinding(ctx context.Context, userID, subscriptionID string) (*models.UserSubscription, error) {
	defer m.lock()()
	if err := m.enter("FindBinding"); err != nil {
		return nil, err
	}
	for _, us := range m.st.bindings {
		if us.UserID == userID && us.SubscriptionID == subscriptionID {
			return m.withPlan(us), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) FindBindingByProfile(ctx context.Context, profileID string) (*models.UserSubscription, error) {
	defer m.lock()()
	if err := m.enter("FindBindingByProfile"); err != nil {
		return nil, err
	}
	for _, us := range m.st.bindings {
		if us.PaymentProfileID != nil && *us.PaymentProfileID == profileID {
			return m.withPlan(us), nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) ListUserBindings(ctx context.Context, userID string) ([]*models.UserSubscription, error) {
	defer m.lock()()
	if err := m.enter("ListUserBindings"); err != nil {
		return nil, err
	}
	var res []*models.UserSubscription
	for _, us := range m.sortedBindings() {
		if us.UserID == userID {
			res = append(res, m.withPlan(us))
		}
	}
	return res, nil
}

func (m *Memory) ListBindingsExpiringBefore(ctx context.Context, day time.Time) ([]*models.UserSubscription, error) {
	defer m.lock()()
	if err := m.enter("ListBindingsExpiringBefore"); err != nil {
		return nil, err
	}
	var res []*models.UserSubscription
	for _, us := range m.sortedBindings() {
		if us.Expires != nil && us.Expires.Before(day) {
			res = append(res, m.withPlan(us))
		}
	}
	return res, nil
}

func (m *Memory) ListBindings(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.UserSubscription, int64, error) {
	defer m.lock()()
	if err := m.enter("ListBindings"); err != nil {
		return nil, 0, err
	}
	all := lo.Map(m.sortedBindings(), func(us models.UserSubscription, _ int) *models.UserSubscription { return m.withPlan(us) })
	for _, f := range filters {
		if f.Field == "user_id" && f.Operator == types.CommonFilterOperatorEq && len(f.Values) > 0 {
			want := fmt.Sprint(f.Values[0])
			all = lo.Filter(all, func(us *models.UserSubscription, _ int) bool { return us.UserID == want })
		}
	}
	return paginate(all, page), int64(len(all)), nil
}

func (m *Memory) sortedBindings() []models.UserSubscription {
	all := lo.Values(m.st.bindings)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (m *Memory) CreateBinding(ctx context.Context, us *models.UserSubscription) error {
	defer m.lock()()
	if err := m.enter("CreateBinding"); err != nil {
		return err
	}
	if us.ID == "" {
		us.ID = tool.GenerateUUIDV7()
	}
	if _, ok := m.st.bindings[us.ID]; ok {
		return fmt.Errorf("%w: id %s", store.ErrDuplicate, us.ID)
	}
	return m.put(us)
}

func (m *Memory) SaveBinding(ctx context.Context, us *models.UserSubscription) error {
	defer m.lock()()
	if err := m.enter("SaveBinding"); err != nil {
		return err
	}
	if us.ID == "" {
		us.ID = tool.GenerateUUIDV7()
	}
	return m.put(us)
}

func (m *Memory) put(us *models.UserSubscription) error {
	for id, other := range m.st.bindings {
		if id == us.ID {
			continue
		}
		if other.UserID == us.UserID && other.SubscriptionID == us.SubscriptionID {
			return fmt.Errorf("%w: user %s already bound to %s", store.ErrDuplicate, us.UserID, us.SubscriptionID)
		}
		if us.PaymentProfileID != nil && other.PaymentProfileID != nil && *us.PaymentProfileID == *other.PaymentProfileID {
			return fmt.Errorf("%w: payment profile %s", store.ErrDuplicate, *us.PaymentProfileID)
		}
	}
	now := m.clock()
	if us.CreatedAt.IsZero() {
		us.CreatedAt = now
	}
	us.UpdatedAt = now
	row := *us
	row.Subscription = nil
	m.st.bindings[us.ID] = row
	return nil
}

func (m *Memory) DeleteBinding(ctx context.Context, id string) error {
	defer m.lock()()
	if err := m.enter("DeleteBinding"); err != nil {
		return err
	}
	if _, ok := m.st.bindings[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.st.bindings, id)
	return nil
}

// Groups

func (m *Memory) AddUserToGroup(ctx context.Context, userID, groupID string) error {
	defer m.lock()()
	if err := m.enter("AddUserToGroup"); err != nil {
		return err
	}
	if m.st.groups[userID] == nil {
		m.st.groups[userID] = map[string]bool{}
	}
	m.st.groups[userID][groupID] = true
	return nil
}

func (m *Memory) RemoveUserFromGroup(ctx context.Context, userID, groupID string) error {
	defer m.lock()()
	if err := m.enter("RemoveUserFromGroup"); err != nil {
		return err
	}
	delete(m.st.groups[userID], groupID)
	return nil
}

func (m *Memory) IsUserInGroup(ctx context.Context, userID, groupID string) (bool, error) {
	defer m.lock()()
	if err := m.enter("IsUserInGroup"); err != nil {
		return false, err
	}
	return m.st.groups[userID][groupID], nil
}

func (m *Memory) UserGroupIDs(ctx context.Context, userID string) ([]string, error) {
	defer m.lock()()
	if err := m.enter("UserGroupIDs"); err != nil {
		return nil, err
	}
	ids := lo.Keys(m.st.groups[userID])
	sort.Strings(ids)
	return ids, nil
}

// Audit

func (m *Memory) AppendTransaction(ctx context.Context, t *models.Transaction) error {
	defer m.lock()()
	if err := m.enter("AppendTransaction"); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = tool.GenerateUUIDV7()
	}
	if t.PaymentTxnID != nil {
		if _, ok := m.findPayment(*t.PaymentTxnID); ok {
			return fmt.Errorf("%w: payment %s", store.ErrDuplicate, *t.PaymentTxnID)
		}
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = m.clock()
	}
	m.st.transactions = append(m.st.transactions, *t)
	return nil
}

func (m *Memory) FindPaymentTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	defer m.lock()()
	if err := m.enter("FindPaymentTransaction"); err != nil {
		return nil, err
	}
	t, ok := m.findPayment(txnID)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) findPayment(txnID string) (models.Transaction, bool) {
	return lo.Find(m.st.transactions, func(t models.Transaction) bool {
		return t.PaymentTxnID != nil && *t.PaymentTxnID == txnID
	})
}

func (m *Memory) ListTransactions(ctx context.Context, filters []*types.CommonFilter, page types.Page) ([]*models.Transaction, int64, error) {
	defer m.lock()()
	if err := m.enter("ListTransactions"); err != nil {
		return nil, 0, err
	}
	all := make([]*models.Transaction, 0, len(m.st.transactions))
	for i := len(m.st.transactions) - 1; i >= 0; i-- {
		t := m.st.transactions[i]
		all = append(all, &t)
	}
	return paginate(all, page), int64(len(all)), nil
}

// Test helpers. They bypass FailOn and Calls.

// SetClock sets the time used for created/updated timestamps.
func (m *Memory) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// Transactions returns every appended Transaction in append order.
func (m *Memory) Transactions() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.st.transactions...)
}

// Events returns the Event of every appended Transaction in append order.
func (m *Memory) Events() []string {
	return lo.Map(m.Transactions(), func(t models.Transaction, _ int) string { return t.Event })
}

// HasBinding reports whether a binding with id exists.
func (m *Memory) HasBinding(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.st.bindings[id]
	return ok
}

// InGroup reports group membership without counting a call.
func (m *Memory) InGroup(userID, groupID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.groups[userID][groupID]
}

func paginate[T any](all []T, page types.Page) []T {
	if page.From >= len(all) {
		return nil
	}
	end := len(all)
	if page.Size > 0 && page.From+page.Size < end {
		end = page.From + page.Size
	}
	return all[page.From:end]
}

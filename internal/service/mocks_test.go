package service

import (
	"context"
	"sync"

	"novella-shop/internal/cart"
	"novella-shop/internal/client"
	"novella-shop/internal/model"
	"novella-shop/internal/session"

	"gorm.io/gorm"
)

// mockStore implements session.Store in memory for testing.
type mockStore struct {
	mu     sync.Mutex
	Carts  map[string]*cart.Document
	Promos map[string]*session.PromoApplication

	CartDeletes  int
	PromoClears  int
	LoadCartErr  error
	SaveCartErr  error
	DeleteErr    error
	SavePromoErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		Carts:  map[string]*cart.Document{},
		Promos: map[string]*session.PromoApplication{},
	}
}

func (m *mockStore) LoadCart(_ context.Context, sessionID string) (*cart.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadCartErr != nil {
		return nil, m.LoadCartErr
	}
	if doc, ok := m.Carts[sessionID]; ok {
		return doc, nil
	}
	return cart.NewDocument(), nil
}

func (m *mockStore) SaveCart(_ context.Context, sessionID string, doc *cart.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveCartErr != nil {
		return m.SaveCartErr
	}
	m.Carts[sessionID] = doc
	return nil
}

func (m *mockStore) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Carts, sessionID)
	m.CartDeletes++
	return nil
}

func (m *mockStore) LoadPromo(_ context.Context, sessionID string) (*session.PromoApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if promo, ok := m.Promos[sessionID]; ok {
		return promo, nil
	}
	return nil, session.ErrNotFound
}

func (m *mockStore) SavePromo(_ context.Context, sessionID string, promo *session.PromoApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SavePromoErr != nil {
		return m.SavePromoErr
	}
	m.Promos[sessionID] = promo
	return nil
}

func (m *mockStore) ClearPromo(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Promos, sessionID)
	m.PromoClears++
	return nil
}

// mockCatalogRepo implements repository.CatalogRepository over fixture maps;
// a missing id behaves like gorm.ErrRecordNotFound, matching the real repo.
type mockCatalogRepo struct {
	Perfumes   map[uint]*model.Perfume
	Capacities map[uint]*model.Capacity
	Variants   map[string]*model.PerfumeCapacity
	Samples    map[uint]*model.Sample
	Gifts      map[uint]*model.Gift
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		Perfumes:   map[uint]*model.Perfume{},
		Capacities: map[uint]*model.Capacity{},
		Variants:   map[string]*model.PerfumeCapacity{},
		Samples:    map[uint]*model.Sample{},
		Gifts:      map[uint]*model.Gift{},
	}
}

func (m *mockCatalogRepo) Seed(_ context.Context) error {
	return nil
}

func (m *mockCatalogRepo) FindPerfume(_ context.Context, perfumeID uint) (*model.Perfume, error) {
	if p, ok := m.Perfumes[perfumeID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) FindCapacity(_ context.Context, capacityID uint) (*model.Capacity, error) {
	if c, ok := m.Capacities[capacityID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) FindVariant(_ context.Context, perfumeID, capacityID uint) (*model.PerfumeCapacity, error) {
	if v, ok := m.Variants[cart.LineKey(perfumeID, capacityID)]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) FindSample(_ context.Context, sampleID uint) (*model.Sample, error) {
	if s, ok := m.Samples[sampleID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) FindGift(_ context.Context, giftID uint) (*model.Gift, error) {
	if g, ok := m.Gifts[giftID]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCatalogRepo) ListAvailableSamples(_ context.Context) ([]*model.Sample, error) {
	out := make([]*model.Sample, 0, len(m.Samples))
	for _, s := range m.Samples {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockCatalogRepo) ListAvailableGifts(_ context.Context) ([]*model.Gift, error) {
	out := make([]*model.Gift, 0, len(m.Gifts))
	for _, g := range m.Gifts {
		out = append(out, g)
	}
	return out, nil
}

// mockPromoRepo implements repository.PromoRepository.
type mockPromoRepo struct {
	Codes map[string]*model.PromoCode
	Err   error
}

func (m *mockPromoRepo) FindActiveByCode(_ context.Context, code string) (*model.PromoCode, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if promo, ok := m.Codes[code]; ok {
		return promo, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// mockOrderRepo implements repository.OrderRepository in memory.
type mockOrderRepo struct {
	mu     sync.Mutex
	NextID uint
	Orders map[uint]*model.Order
	Items  map[uint][]*model.OrderItem
	Sampls map[uint][]*model.OrderSample
	Gifts  map[uint]*model.OrderGift

	Deletes     int
	Transitions int
	CreateErr   error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		NextID: 1,
		Orders: map[uint]*model.Order{},
		Items:  map[uint][]*model.OrderItem{},
		Sampls: map[uint][]*model.OrderSample{},
		Gifts:  map[uint]*model.OrderGift{},
	}
}

func (m *mockOrderRepo) CreateWithLines(_ context.Context, order *model.Order, items []*model.OrderItem, samples []*model.OrderSample, gift *model.OrderGift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	order.ID = m.NextID
	m.NextID++
	m.Orders[order.ID] = order
	for _, item := range items {
		item.OrderID = order.ID
	}
	m.Items[order.ID] = items
	for _, sample := range samples {
		sample.OrderID = order.ID
	}
	m.Sampls[order.ID] = samples
	if gift != nil {
		gift.OrderID = order.ID
		m.Gifts[order.ID] = gift
	}
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, orderID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Orders, orderID)
	delete(m.Items, orderID)
	delete(m.Sampls, orderID)
	delete(m.Gifts, orderID)
	m.Deletes++
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, orderID uint) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.Orders[orderID]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByIDForUser(_ context.Context, orderID, userID uint) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.Orders[orderID]; ok && order.UserID == userID {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) GetItems(_ context.Context, orderID uint) ([]*model.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Items[orderID], nil
}

func (m *mockOrderRepo) GetSamples(_ context.Context, orderID uint) ([]*model.OrderSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sampls[orderID], nil
}

func (m *mockOrderRepo) GetGift(_ context.Context, orderID uint) (*model.OrderGift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gift, ok := m.Gifts[orderID]; ok {
		return gift, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) SetPaymentRef(_ context.Context, orderID uint, provider, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.PaymentProvider = provider
	switch provider {
	case model.PaymentProviderStripe:
		order.StripePaymentID = paymentID
		order.YookassaPaymentID = ""
	case model.PaymentProviderYookassa:
		order.YookassaPaymentID = paymentID
		order.StripePaymentID = ""
	}
	return nil
}

func (m *mockOrderRepo) MarkProcessing(_ context.Context, orderID uint, provider, paymentID string) (*model.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderID]
	if !ok {
		return nil, false, gorm.ErrRecordNotFound
	}
	if order.Status == model.OrderStatusProcessing {
		return order, false, nil
	}
	order.Status = model.OrderStatusProcessing
	order.PaymentProvider = provider
	switch provider {
	case model.PaymentProviderStripe:
		order.StripePaymentID = paymentID
	case model.PaymentProviderYookassa:
		order.YookassaPaymentID = paymentID
	}
	m.Transitions++
	return order, true, nil
}

func (m *mockOrderRepo) MarkCancelled(_ context.Context, orderID uint) (*model.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderID]
	if !ok {
		return nil, false, gorm.ErrRecordNotFound
	}
	if order.Status == model.OrderStatusCancelled {
		return order, false, nil
	}
	order.Status = model.OrderStatusCancelled
	m.Transitions++
	return order, true, nil
}

// mockWebhookEventRepo implements repository.WebhookEventRepository.
type mockWebhookEventRepo struct {
	mu        sync.Mutex
	Processed map[string]bool
}

func newMockWebhookEventRepo() *mockWebhookEventRepo {
	return &mockWebhookEventRepo{Processed: map[string]bool{}}
}

func (m *mockWebhookEventRepo) key(provider, eventID string) string {
	return provider + ":" + eventID
}

func (m *mockWebhookEventRepo) Exists(_ context.Context, provider, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Processed[m.key(provider, eventID)], nil
}

func (m *mockWebhookEventRepo) MarkProcessed(_ context.Context, provider, eventID, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed[m.key(provider, eventID)] = true
	return nil
}

// mockStripeClient implements client.StripeClient.
type mockStripeClient struct {
	Session      *model.StripeCheckoutSession
	CreateErr    error
	GetErr       error
	SignatureErr error

	CreateCalls int
}

func (m *mockStripeClient) CreateCheckoutSession(_ context.Context, _ uint, _ []client.StripeLineItem, _, _ string) (*model.StripeCheckoutSession, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Session, nil
}

func (m *mockStripeClient) GetCheckoutSession(_ context.Context, _ string) (*model.StripeCheckoutSession, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Session, nil
}

func (m *mockStripeClient) VerifyWebhookSignature(_ string, _ []byte) error {
	return m.SignatureErr
}

// mockYookassaClient implements client.YookassaClient.
type mockYookassaClient struct {
	Payment    *model.YookassaPayment
	CreateErr  error
	GetErr     error
	LastIdkKey string

	GetCalls int
}

func (m *mockYookassaClient) CreatePayment(_ context.Context, _ *client.YookassaCreatePaymentRequest, idempotenceKey string) (*model.YookassaPayment, error) {
	m.LastIdkKey = idempotenceKey
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Payment, nil
}

func (m *mockYookassaClient) GetPayment(_ context.Context, _ string) (*model.YookassaPayment, error) {
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Payment, nil
}

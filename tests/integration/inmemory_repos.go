package integration

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// --- In-Memory Client Repo ---

type inMemoryClientRepo struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*domain.Client
}

func newInMemoryClientRepo() *inMemoryClientRepo {
	return &inMemoryClientRepo{clients: make(map[uuid.UUID]*domain.Client)}
}

func (r *inMemoryClientRepo) Create(ctx context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	return nil
}

func (r *inMemoryClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *inMemoryClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r *inMemoryClientRepo) Update(ctx context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
	return nil
}

func (r *inMemoryClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
	return nil
}

// --- In-Memory Project Repo ---

type inMemoryProjectRepo struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]*domain.Project
}

func newInMemoryProjectRepo() *inMemoryProjectRepo {
	return &inMemoryProjectRepo{projects: make(map[uuid.UUID]*domain.Project)}
}

func (r *inMemoryProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = p
	return nil
}

func (r *inMemoryProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *inMemoryProjectRepo) List(ctx context.Context, params ports.ProjectListParams) ([]domain.Project, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Project
	for _, p := range r.projects {
		if params.ClientID != nil && p.ClientID != *params.ClientID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *inMemoryProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = p
	return nil
}

// --- In-Memory Document Repo ---

// inMemoryDocumentRepo enforces number uniqueness the way the UNIQUE
// constraint on documents.number does, surfacing the same pg error code.
type inMemoryDocumentRepo struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*domain.Document
}

func newInMemoryDocumentRepo() *inMemoryDocumentRepo {
	return &inMemoryDocumentRepo{docs: make(map[uuid.UUID]*domain.Document)}
}

func (r *inMemoryDocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.docs {
		if existing.Number == d.Number {
			return &pgconn.PgError{Code: "23505", ConstraintName: "documents_number_key"}
		}
	}
	r.docs[d.ID] = d
	return nil
}

func (r *inMemoryDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	return d, nil
}

func (r *inMemoryDocumentRepo) List(ctx context.Context, params ports.DocumentListParams) ([]domain.Document, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Document
	for _, d := range r.docs {
		if params.DocType != nil && d.DocType != *params.DocType {
			continue
		}
		if params.ClientID != nil && d.ClientID != *params.ClientID {
			continue
		}
		if params.Status != nil && d.Status != *params.Status {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *inMemoryDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[id]; ok {
		d.Status = status
	}
	return nil
}

func (r *inMemoryDocumentRepo) HighestNumber(ctx context.Context, prefix string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	highest := ""
	for _, d := range r.docs {
		if strings.HasPrefix(d.Number, prefix+"-") && d.Number > highest {
			highest = d.Number
		}
	}
	return highest, nil
}

func (r *inMemoryDocumentRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.docs {
		if d.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// --- In-Memory Webhook Repos ---

type inMemoryWebhookRepo struct {
	mu       sync.RWMutex
	webhooks map[uuid.UUID]*domain.Webhook
}

func newInMemoryWebhookRepo() *inMemoryWebhookRepo {
	return &inMemoryWebhookRepo{webhooks: make(map[uuid.UUID]*domain.Webhook)}
}

func (r *inMemoryWebhookRepo) Create(ctx context.Context, w *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks[w.ID] = w
	return nil
}

func (r *inMemoryWebhookRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.webhooks[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *inMemoryWebhookRepo) List(ctx context.Context) ([]domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Webhook, 0, len(r.webhooks))
	for _, w := range r.webhooks {
		out = append(out, *w)
	}
	return out, nil
}

func (r *inMemoryWebhookRepo) ListEnabled(ctx context.Context) ([]domain.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Webhook
	for _, w := range r.webhooks {
		if w.Enabled {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *inMemoryWebhookRepo) Update(ctx context.Context, w *domain.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhooks[w.ID] = w
	return nil
}

func (r *inMemoryWebhookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.webhooks, id)
	return nil
}

type inMemoryDeliveryRepo struct {
	mu         sync.RWMutex
	deliveries map[uuid.UUID]*domain.WebhookDelivery
}

func newInMemoryDeliveryRepo() *inMemoryDeliveryRepo {
	return &inMemoryDeliveryRepo{deliveries: make(map[uuid.UUID]*domain.WebhookDelivery)}
}

func (r *inMemoryDeliveryRepo) Create(ctx context.Context, d *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.deliveries[d.ID] = &cp
	return nil
}

func (r *inMemoryDeliveryRepo) Update(ctx context.Context, d *domain.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.deliveries[d.ID] = &cp
	return nil
}

func (r *inMemoryDeliveryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookDelivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deliveries[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *inMemoryDeliveryRepo) ListByWebhook(ctx context.Context, webhookID uuid.UUID, limit int) ([]domain.WebhookDelivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookDelivery
	for _, d := range r.deliveries {
		if d.WebhookID == webhookID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *inMemoryDeliveryRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookDelivery
	for _, d := range r.deliveries {
		if d.Status == domain.DeliveryStatusRetrying && d.NextRetryAt != nil && !d.NextRetryAt.After(now) {
			out = append(out, *d)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// --- In-Memory Settings Repo ---

type inMemorySettingsRepo struct {
	mu     sync.RWMutex
	values map[string]string
}

func newInMemorySettingsRepo() *inMemorySettingsRepo {
	return &inMemorySettingsRepo{values: make(map[string]string)}
}

func (r *inMemorySettingsRepo) Get(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[key], nil
}

func (r *inMemorySettingsRepo) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *inMemorySettingsRepo) All(ctx context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

// --- In-Memory Activity Repo ---

type inMemoryActivityRepo struct {
	mu      sync.RWMutex
	entries []domain.ActivityLog
}

func newInMemoryActivityRepo() *inMemoryActivityRepo {
	return &inMemoryActivityRepo{}
}

func (r *inMemoryActivityRepo) Create(ctx context.Context, entry *domain.ActivityLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryActivityRepo) List(ctx context.Context, params ports.ActivityListParams) ([]domain.ActivityLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]domain.ActivityLog(nil), r.entries...)
	return out, int64(len(out)), nil
}

// --- In-Memory Notification Repo ---

type inMemoryNotificationRepo struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID]*domain.Notification
}

func newInMemoryNotificationRepo() *inMemoryNotificationRepo {
	return &inMemoryNotificationRepo{notifications: make(map[uuid.UUID]*domain.Notification)}
}

func (r *inMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications[n.ID] = n
	return nil
}

func (r *inMemoryNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *inMemoryNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryNotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notifications[notificationID]; ok && n.UserID == userID && n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
	return nil
}

func (r *inMemoryNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, n := range r.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
		}
	}
	return nil
}

// --- In-Memory Article Repo ---

type inMemoryArticleRepo struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]*domain.Article
}

func newInMemoryArticleRepo() *inMemoryArticleRepo {
	return &inMemoryArticleRepo{articles: make(map[uuid.UUID]*domain.Article)}
}

func (r *inMemoryArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[a.ID] = a
	return nil
}

func (r *inMemoryArticleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r *inMemoryArticleRepo) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, nil
}

func (r *inMemoryArticleRepo) List(ctx context.Context, publishedOnly bool, category string) ([]domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Article
	for _, a := range r.articles {
		if publishedOnly && !a.Published {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *inMemoryArticleRepo) Update(ctx context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[a.ID] = a
	return nil
}

func (r *inMemoryArticleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.articles, id)
	return nil
}

// --- In-Memory File Repo + Object Store ---

type inMemoryFileRepo struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*domain.StoredFile
}

func newInMemoryFileRepo() *inMemoryFileRepo {
	return &inMemoryFileRepo{files: make(map[uuid.UUID]*domain.StoredFile)}
}

func (r *inMemoryFileRepo) Create(ctx context.Context, f *domain.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = f
	return nil
}

func (r *inMemoryFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[id]
	if !ok {
		return nil, nil
	}
	return f, nil
}

func (r *inMemoryFileRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.StoredFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.StoredFile
	for _, f := range r.files {
		if f.ProjectID != nil && *f.ProjectID == projectID && f.Status == domain.FileStatusReady {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *inMemoryFileRepo) Update(ctx context.Context, f *domain.StoredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = f
	return nil
}

func (r *inMemoryFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

// fakeObjectStore hands out deterministic URLs instead of talking to S3.
type fakeObjectStore struct{}

func (s *fakeObjectStore) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	return "https://s3.test/upload/" + key, nil
}

func (s *fakeObjectStore) PresignDownload(ctx context.Context, key string) (string, error) {
	return "https://s3.test/download/" + key, nil
}

func (s *fakeObjectStore) Delete(ctx context.Context, key string) error {
	return nil
}

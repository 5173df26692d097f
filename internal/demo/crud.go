package demo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/solardesk/solar-crm-backend/internal/complaints"
	"github.com/solardesk/solar-crm-backend/internal/inventory"
	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/leads"
)

// InventoryStore implements inventory.Store on the embedded redis.
type InventoryStore struct {
	mu      sync.Mutex
	kv      *kv
	serials map[string]string // serial -> id, mirrors the unique index
}

func NewInventoryStore(client *redis.Client) *InventoryStore {
	return &InventoryStore{kv: newKV(client, "inventory"), serials: map[string]string{}}
}

func (s *InventoryStore) Create(ctx context.Context, item inventory.Item) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.serials[item.SerialNumber]; dup {
		return nil, inventory.ErrDuplicateSerial
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.kv.put(ctx, item.ID, item); err != nil {
		return nil, err
	}
	s.serials[item.SerialNumber] = item.ID
	return &item, nil
}

func (s *InventoryStore) Get(ctx context.Context, id string) (*inventory.Item, error) {
	var it inventory.Item
	found, err := s.kv.get(ctx, id, &it)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, inventory.ErrNotFound
	}
	return &it, nil
}

func (s *InventoryStore) List(ctx context.Context, f inventory.Filter) ([]inventory.Item, error) {
	out := []inventory.Item{}
	err := s.kv.each(ctx, func(data []byte) error {
		var it inventory.Item
		if err := json.Unmarshal(data, &it); err != nil {
			return err
		}
		if (f.Status == "" || it.Status == f.Status) &&
			(f.ItemType == "" || it.ItemType == f.ItemType) &&
			(f.ProjectID == "" || it.ProjectID == f.ProjectID) {
			out = append(out, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InventoryStore) SetAssignment(ctx context.Context, id, status, projectID string) (*inventory.Item, error) {
	return s.patch(ctx, id, func(it *inventory.Item) {
		it.Status = status
		it.ProjectID = projectID
	})
}

func (s *InventoryStore) SetStatus(ctx context.Context, id, status string) (*inventory.Item, error) {
	return s.patch(ctx, id, func(it *inventory.Item) { it.Status = status })
}

func (s *InventoryStore) patch(ctx context.Context, id string, fn func(*inventory.Item)) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(it)
	it.UpdatedAt = time.Now().UTC()
	if err := s.kv.put(ctx, it.ID, it); err != nil {
		return nil, err
	}
	return it, nil
}

// LeadStore implements leads.Store on the embedded redis.
type LeadStore struct {
	mu sync.Mutex
	kv *kv
}

func NewLeadStore(client *redis.Client) *LeadStore {
	return &LeadStore{kv: newKV(client, "lead")}
}

func (s *LeadStore) Create(ctx context.Context, l leads.Lead) (*leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	if err := s.kv.put(ctx, l.ID, l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LeadStore) Get(ctx context.Context, id string) (*leads.Lead, error) {
	var l leads.Lead
	found, err := s.kv.get(ctx, id, &l)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, leads.ErrNotFound
	}
	return &l, nil
}

func (s *LeadStore) List(ctx context.Context, f leads.Filter) ([]leads.Lead, error) {
	out := []leads.Lead{}
	err := s.kv.each(ctx, func(data []byte) error {
		var l leads.Lead
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		if (f.Status == "" || l.Status == f.Status) &&
			(f.AssignedToID == "" || l.AssignedToID == f.AssignedToID) {
			out = append(out, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *LeadStore) Update(ctx context.Context, id string, upd leads.Update) (*leads.Lead, error) {
	return s.patch(ctx, id, func(l *leads.Lead) {
		if upd.Status != nil {
			l.Status = *upd.Status
		}
		if upd.Notes != nil {
			l.Notes = *upd.Notes
		}
		if upd.AssignedToID != nil {
			l.AssignedToID = *upd.AssignedToID
		}
		if upd.AssignedToName != nil {
			l.AssignedToName = *upd.AssignedToName
		}
	})
}

func (s *LeadStore) MarkConverted(ctx context.Context, id, projectID string) (*leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == leads.StatusConverted {
		return nil, leads.ErrAlreadyConverted
	}
	l.Status = leads.StatusConverted
	l.ProjectID = projectID
	l.UpdatedAt = time.Now().UTC()
	if err := s.kv.put(ctx, l.ID, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *LeadStore) patch(ctx context.Context, id string, fn func(*leads.Lead)) (*leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(l)
	l.UpdatedAt = time.Now().UTC()
	if err := s.kv.put(ctx, l.ID, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ComplaintStore implements complaints.Store on the embedded redis.
type ComplaintStore struct {
	mu sync.Mutex
	kv *kv
}

func NewComplaintStore(client *redis.Client) *ComplaintStore {
	return &ComplaintStore{kv: newKV(client, "complaint")}
}

func (s *ComplaintStore) Create(ctx context.Context, cm complaints.Complaint) (*complaints.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cm.ID == "" {
		cm.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	cm.CreatedAt = now
	cm.UpdatedAt = now

	if err := s.kv.put(ctx, cm.ID, cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (s *ComplaintStore) Get(ctx context.Context, id string) (*complaints.Complaint, error) {
	var cm complaints.Complaint
	found, err := s.kv.get(ctx, id, &cm)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, complaints.ErrNotFound
	}
	return &cm, nil
}

func (s *ComplaintStore) List(ctx context.Context, f complaints.Filter) ([]complaints.Complaint, error) {
	out := []complaints.Complaint{}
	err := s.kv.each(ctx, func(data []byte) error {
		var cm complaints.Complaint
		if err := json.Unmarshal(data, &cm); err != nil {
			return err
		}
		if (f.Status == "" || cm.Status == f.Status) &&
			(f.Priority == "" || cm.Priority == f.Priority) &&
			(f.ProjectID == "" || cm.ProjectID == f.ProjectID) &&
			(f.TechnicianID == "" || cm.TechnicianID == f.TechnicianID) {
			out = append(out, cm)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ComplaintStore) Update(ctx context.Context, id string, upd complaints.Update) (*complaints.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cm, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Status != nil {
		cm.Status = *upd.Status
	}
	if upd.Priority != nil {
		cm.Priority = *upd.Priority
	}
	if upd.TechnicianID != nil {
		cm.TechnicianID = *upd.TechnicianID
	}
	if upd.TechnicianName != nil {
		cm.TechnicianName = *upd.TechnicianName
	}
	if upd.Resolution != nil {
		cm.Resolution = *upd.Resolution
	}
	cm.UpdatedAt = time.Now().UTC()
	if err := s.kv.put(ctx, cm.ID, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

// InvoiceStore implements invoices.Store on the embedded redis.
type InvoiceStore struct {
	mu sync.Mutex
	kv *kv
}

func NewInvoiceStore(client *redis.Client) *InvoiceStore {
	return &InvoiceStore{kv: newKV(client, "invoice")}
}

func (s *InvoiceStore) Create(ctx context.Context, inv invoices.Invoice) (*invoices.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = invoices.NewInvoiceNumber(now)
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if err := s.kv.put(ctx, inv.ID, inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceStore) Get(ctx context.Context, id string) (*invoices.Invoice, error) {
	var inv invoices.Invoice
	found, err := s.kv.get(ctx, id, &inv)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, invoices.ErrNotFound
	}
	return &inv, nil
}

func (s *InvoiceStore) List(ctx context.Context, f invoices.Filter) ([]invoices.Invoice, error) {
	out := []invoices.Invoice{}
	err := s.kv.each(ctx, func(data []byte) error {
		var inv invoices.Invoice
		if err := json.Unmarshal(data, &inv); err != nil {
			return err
		}
		if (f.Status == "" || inv.Status == f.Status) &&
			(f.ProjectID == "" || inv.ProjectID == f.ProjectID) {
			out = append(out, inv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InvoiceStore) SetStatus(ctx context.Context, id, status string, paidAt *time.Time) (*invoices.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Status = status
	if paidAt != nil {
		inv.PaidAt = paidAt
	}
	inv.UpdatedAt = time.Now().UTC()
	if err := s.kv.put(ctx, inv.ID, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceStore) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	all, err := s.List(ctx, invoices.Filter{Status: invoices.StatusSent})
	if err != nil {
		return 0, err
	}

	var n int64
	for _, inv := range all {
		if inv.DueDate != nil && inv.DueDate.Before(now) {
			if _, err := s.SetStatus(ctx, inv.ID, invoices.StatusOverdue, nil); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

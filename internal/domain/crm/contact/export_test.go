package contact

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/klauspost/compress/gzip"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain"
)

type fakeContactRepo struct {
	contacts []Contact
}

func (f *fakeContactRepo) Create(ctx context.Context, c *Contact) error { return nil }
func (f *fakeContactRepo) GetByID(ctx context.Context, cid id.ID) (*Contact, error) {
	return nil, apperror.NewNotFound("contact", cid.String())
}
func (f *fakeContactRepo) Update(ctx context.Context, c *Contact) error { return nil }
func (f *fakeContactRepo) Delete(ctx context.Context, cid id.ID) error  { return nil }
func (f *fakeContactRepo) SetDeletionMark(ctx context.Context, cid id.ID, marked bool) error {
	return nil
}
func (f *fakeContactRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Contact], error) {
	return domain.ListResult[*Contact]{}, nil
}
func (f *fakeContactRepo) Exists(ctx context.Context, cid id.ID) (bool, error) { return false, nil }
func (f *fakeContactRepo) FindByPhone(ctx context.Context, phone string) (*Contact, error) {
	return nil, apperror.NewNotFound("contact", phone)
}
func (f *fakeContactRepo) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	return nil, apperror.NewNotFound("contact", email)
}
func (f *fakeContactRepo) SetOwner(ctx context.Context, contactID id.ID, ownerID *id.ID) error {
	return nil
}
func (f *fakeContactRepo) ListAll(ctx context.Context) ([]Contact, error) {
	return f.contacts, nil
}

func TestExportCSV(t *testing.T) {
	phone := "+971501234567"
	email := "omar@example.com"

	first := NewContact("Amira", ChannelWhatsApp)
	first.Phone = &phone
	first.Tags = []string{"vip", "newsletter"}

	second := NewContact("Omar", ChannelEmail)
	second.Email = &email

	svc := NewService(&fakeContactRepo{contacts: []Contact{*first, *second}})

	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if n != 2 {
		t.Errorf("exported %d rows, want 2", n)
	}

	gz, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	records, err := csv.NewReader(gz).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d CSV rows, want header + 2", len(records))
	}
	if len(records[0]) != 12 {
		t.Errorf("header has %d columns, want 12", len(records[0]))
	}
	if records[0][0] != "id" || records[0][11] != "created_at" {
		t.Errorf("unexpected header: %v", records[0])
	}

	if records[1][1] != "Amira" {
		t.Errorf("first row name = %q", records[1][1])
	}
	if records[1][8] != "vip;newsletter" {
		t.Errorf("tags column = %q, want vip;newsletter", records[1][8])
	}
	if records[2][4] != email {
		t.Errorf("second row email = %q", records[2][4])
	}
}

func TestExportCSV_Empty(t *testing.T) {
	svc := NewService(&fakeContactRepo{})

	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}
	if n != 0 {
		t.Errorf("exported %d rows, want 0", n)
	}

	gz, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	records, err := csv.NewReader(gz).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d rows, want header only", len(records))
	}
}

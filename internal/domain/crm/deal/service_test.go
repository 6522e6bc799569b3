package deal

import (
	"context"
	"errors"
	"testing"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/core/tenant"
	"omnicrm/internal/core/types"
	"omnicrm/internal/domain"
	"omnicrm/internal/domain/crm/pipeline"
)

// --- Fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDealRepo struct {
	deals   map[id.ID]*Deal
	updated *Deal
}

func newFakeDealRepo(deals ...*Deal) *fakeDealRepo {
	m := make(map[id.ID]*Deal, len(deals))
	for _, d := range deals {
		m[d.ID] = d
	}
	return &fakeDealRepo{deals: m}
}

func (f *fakeDealRepo) Create(ctx context.Context, d *Deal) error {
	f.deals[d.ID] = d
	return nil
}

func (f *fakeDealRepo) GetByID(ctx context.Context, dealID id.ID) (*Deal, error) {
	d, ok := f.deals[dealID]
	if !ok {
		return nil, apperror.NewNotFound("deal", dealID.String())
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDealRepo) Update(ctx context.Context, d *Deal) error {
	f.updated = d
	f.deals[d.ID] = d
	return nil
}

func (f *fakeDealRepo) Delete(ctx context.Context, dealID id.ID) error { return nil }
func (f *fakeDealRepo) SetDeletionMark(ctx context.Context, dealID id.ID, marked bool) error {
	return nil
}
func (f *fakeDealRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Deal], error) {
	return domain.ListResult[*Deal]{}, nil
}
func (f *fakeDealRepo) Exists(ctx context.Context, dealID id.ID) (bool, error) {
	_, ok := f.deals[dealID]
	return ok, nil
}
func (f *fakeDealRepo) GetByNumber(ctx context.Context, number string) (*Deal, error) {
	for _, d := range f.deals {
		if d.Number == number {
			return d, nil
		}
	}
	return nil, apperror.NewNotFound("deal", number)
}
func (f *fakeDealRepo) ListByPipeline(ctx context.Context, pipelineID id.ID) ([]Deal, error) {
	return nil, nil
}
func (f *fakeDealRepo) SumByStage(ctx context.Context, pipelineID id.ID) (map[string]types.Money, error) {
	return nil, nil
}

type fakePipelineRepo struct {
	pipelines map[id.ID]*pipeline.Pipeline
}

func (f *fakePipelineRepo) Create(ctx context.Context, p *pipeline.Pipeline) error { return nil }

func (f *fakePipelineRepo) GetByID(ctx context.Context, pid id.ID) (*pipeline.Pipeline, error) {
	p, ok := f.pipelines[pid]
	if !ok {
		return nil, apperror.NewNotFound("pipeline", pid.String())
	}
	return p, nil
}

func (f *fakePipelineRepo) Update(ctx context.Context, p *pipeline.Pipeline) error { return nil }
func (f *fakePipelineRepo) Delete(ctx context.Context, pid id.ID) error            { return nil }
func (f *fakePipelineRepo) SetDeletionMark(ctx context.Context, pid id.ID, marked bool) error {
	return nil
}
func (f *fakePipelineRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*pipeline.Pipeline], error) {
	return domain.ListResult[*pipeline.Pipeline]{}, nil
}
func (f *fakePipelineRepo) Exists(ctx context.Context, pid id.ID) (bool, error) { return true, nil }
func (f *fakePipelineRepo) GetDefault(ctx context.Context) (*pipeline.Pipeline, error) {
	for _, p := range f.pipelines {
		if p.IsDefault {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("pipeline", "default")
}
func (f *fakePipelineRepo) SetDefault(ctx context.Context, pipelineID string) error { return nil }

// --- Helpers ---

func testSetup(t *testing.T) (context.Context, *Service, *fakeDealRepo, *pipeline.Pipeline) {
	t.Helper()

	p := pipeline.NewPipeline("Sales", pipeline.DefaultStages())
	pipelineSvc := pipeline.NewService(&fakePipelineRepo{
		pipelines: map[id.ID]*pipeline.Pipeline{p.ID: p},
	})

	repo := newFakeDealRepo()
	svc := NewService(repo, pipelineSvc, nil)

	ctx := tenant.WithTxManager(context.Background(), fakeTxManager{})
	return ctx, svc, repo, p
}

// --- Tests ---

func TestMoveStage(t *testing.T) {
	ctx, svc, repo, p := testSetup(t)

	d := NewDeal("Enterprise plan", p.ID, "new")
	d.Amount = types.MustMoney("5000")
	repo.deals[d.ID] = d

	moved, err := svc.MoveStage(ctx, d.ID, "proposal")
	if err != nil {
		t.Fatalf("MoveStage failed: %v", err)
	}
	if moved.StageSlug != "proposal" {
		t.Errorf("stage = %q, want proposal", moved.StageSlug)
	}
	if moved.IsClosed() {
		t.Error("non-terminal stage must not close the deal")
	}
	if repo.updated == nil {
		t.Error("deal was not persisted")
	}
}

func TestMoveStage_TerminalStageClosesDeal(t *testing.T) {
	ctx, svc, repo, p := testSetup(t)

	d := NewDeal("Enterprise plan", p.ID, "negotiation")
	repo.deals[d.ID] = d

	moved, err := svc.MoveStage(ctx, d.ID, "won")
	if err != nil {
		t.Fatalf("MoveStage failed: %v", err)
	}
	if !moved.IsClosed() {
		t.Error("won stage must stamp ClosedAt")
	}
	if moved.ClosedAt == nil {
		t.Fatal("ClosedAt is nil")
	}
}

func TestMoveStage_ClosedDealRejected(t *testing.T) {
	ctx, svc, repo, p := testSetup(t)

	d := NewDeal("Enterprise plan", p.ID, "won")
	now := d.CreatedAt
	d.ClosedAt = &now
	repo.deals[d.ID] = d

	_, err := svc.MoveStage(ctx, d.ID, "new")
	if err == nil {
		t.Fatal("closed deal accepted a stage change")
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != "DEAL_ALREADY_CLOSED" {
		t.Errorf("error = %v, want DEAL_ALREADY_CLOSED", err)
	}
}

func TestMoveStage_UnknownStage(t *testing.T) {
	ctx, svc, repo, p := testSetup(t)

	d := NewDeal("Enterprise plan", p.ID, "new")
	repo.deals[d.ID] = d

	if _, err := svc.MoveStage(ctx, d.ID, "galaxy"); err == nil {
		t.Fatal("unknown stage accepted")
	}
}

func TestMoveStage_DealNotFound(t *testing.T) {
	ctx, svc, _, _ := testSetup(t)

	_, err := svc.MoveStage(ctx, id.New(), "proposal")
	if !apperror.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

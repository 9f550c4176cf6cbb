package listing

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-gateway/internal/backend"
	"storefront-gateway/internal/directory"
	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/filter"
)

// fakeClient implements backend.Client with a pluggable search function.
type fakeClient struct {
	search      func(ctx context.Context, params url.Values) (*backend.ProductPage, error)
	searchCalls int32
}

func (f *fakeClient) SearchProducts(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
	atomic.AddInt32(&f.searchCalls, 1)
	return f.search(ctx, params)
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return nil, nil
}
func (f *fakeClient) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeClient) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeClient) GetBusinessBySlug(ctx context.Context, slug string) (*domain.BusinessProfile, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeClient) CreateProduct(ctx context.Context, token string, p domain.Product) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func emptyPage(params url.Values) *backend.ProductPage {
	page, _ := strconv.Atoi(params.Get("page"))
	perPage, _ := strconv.Atoi(params.Get("perPage"))
	return &backend.ProductPage{Products: []domain.Product{}, Page: page, PerPage: perPage}
}

func testDirectory(cats []domain.Category) *directory.Directory {
	return directory.New(func(ctx context.Context) ([]domain.Category, error) {
		return cats, nil
	}, time.Second, zap.NewNop())
}

var storeCategories = []domain.Category{
	{ID: "cat_42", Slug: "safety-equipment", Name: "Safety Equipment"},
	{ID: "cat_1", Slug: "tools", Name: "Tools", ChildIDs: []string{"cat_7"}},
	{ID: "cat_7", Slug: "power-tools", Name: "Power Tools", ParentIDs: []string{"cat_1"}},
}

func TestExecutor_MapsFilterToQueryParams(t *testing.T) {
	var got url.Values
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		got = params
		return emptyPage(params), nil
	}}
	exec := NewExecutor(client, zap.NewNop())

	min := decimal.NewFromInt(1000)
	max := decimal.NewFromInt(50000)
	f := filter.Default()
	f.MinPrice = &min
	f.MaxPrice = &max
	f.Sort = filter.SortPriceAsc
	f.Page = 1
	f.PerPage = 12

	_, err := exec.Fetch(context.Background(), "cat_42", f)
	require.NoError(t, err)

	assert.Equal(t, "cat_42", got.Get("category_id"))
	assert.Equal(t, "1000", got.Get("minPrice"))
	assert.Equal(t, "50000", got.Get("maxPrice"))
	assert.Equal(t, "price-asc", got.Get("sort"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "12", got.Get("perPage"))
}

func TestExecutor_ClampsPaginationDefensively(t *testing.T) {
	var got url.Values
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		got = params
		return emptyPage(params), nil
	}}
	exec := NewExecutor(client, zap.NewNop())

	f := filter.Filter{Sort: filter.SortRecommended, Page: -3, PerPage: 500}
	_, err := exec.Fetch(context.Background(), "", f)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "100", got.Get("perPage"))
}

func TestExecutor_FillsMissingPaginationEcho(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		return &backend.ProductPage{Products: []domain.Product{{ID: "p1"}}}, nil
	}}
	exec := NewExecutor(client, zap.NewNop())

	f := filter.Default()
	f.Page = 3
	f.PerPage = 12
	page, err := exec.Fetch(context.Background(), "", f)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 12, page.PerPage)
}

func TestAssembler_UnknownSlugIsTerminalAndIssuesNoQuery(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		return emptyPage(params), nil
	}}
	a := NewAssembler(testDirectory(storeCategories), NewExecutor(client, zap.NewNop()), nil, "https://shop.example", zap.NewNop())

	_, err := a.CategoryPage(context.Background(), "does-not-exist", filter.Default())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, atomic.LoadInt32(&client.searchCalls), "no listing request may be issued for an unknown slug")
}

func TestAssembler_ListingFailureDegradesWithCategoryContext(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		return nil, &domain.RequestFailedError{Cause: errors.New("backend down")}
	}}
	a := NewAssembler(testDirectory(storeCategories), NewExecutor(client, zap.NewNop()), nil, "https://shop.example", zap.NewNop())

	page, err := a.CategoryPage(context.Background(), "safety-equipment", filter.Default())
	require.NoError(t, err, "listing failure must degrade, not propagate")
	assert.True(t, page.Degraded)
	assert.Equal(t, NoProductsMessage, page.Message)
	assert.Equal(t, "Safety Equipment", page.Category.Name)
	assert.Empty(t, page.Products)
	require.Len(t, page.Breadcrumb, 2)
	assert.Equal(t, "Home", page.Breadcrumb[0].Name)
}

func TestAssembler_SafetyEquipmentScenario(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", Slug: "helmet", Name: "Helmet"},
		{ID: "p2", Slug: "gloves", Name: "Gloves"},
	}
	var got url.Values
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		got = params
		total := 2
		return &backend.ProductPage{Products: products, Page: 1, PerPage: 12, Total: &total}, nil
	}}
	a := NewAssembler(testDirectory(storeCategories), NewExecutor(client, zap.NewNop()), nil, "https://shop.example", zap.NewNop())

	min := decimal.NewFromInt(1000)
	max := decimal.NewFromInt(50000)
	f := filter.Default()
	f.MinPrice = &min
	f.MaxPrice = &max
	f.Sort = filter.SortPriceAsc
	f.PerPage = 12

	page, err := a.CategoryPage(context.Background(), "safety-equipment", f)
	require.NoError(t, err)

	assert.Equal(t, "cat_42", got.Get("category_id"))
	assert.Equal(t, "1000", got.Get("minPrice"))
	assert.Equal(t, "50000", got.Get("maxPrice"))
	assert.Equal(t, "price-asc", got.Get("sort"))

	assert.Equal(t, "Safety Equipment", page.Category.Name)
	require.Len(t, page.Breadcrumb, 2)
	assert.Equal(t, "Home", page.Breadcrumb[0].Name)
	assert.Equal(t, "Safety Equipment", page.Breadcrumb[1].Name)
	// backend order is preserved as-is
	assert.Equal(t, "p1", page.Products[0].ID)
	assert.Equal(t, "p2", page.Products[1].ID)
	assert.False(t, page.HasMore)
	assert.False(t, page.Degraded)
}

func TestAssembler_NestedBreadcrumbAndSchema(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		return emptyPage(params), nil
	}}
	a := NewAssembler(testDirectory(storeCategories), NewExecutor(client, zap.NewNop()), nil, "https://shop.example", zap.NewNop())

	page, err := a.CategoryPage(context.Background(), "power-tools", filter.Default())
	require.NoError(t, err)

	require.Len(t, page.Breadcrumb, 3)
	assert.Equal(t, "Tools", page.Breadcrumb[1].Name)
	assert.Equal(t, "Power Tools", page.Breadcrumb[2].Name)
	require.Len(t, page.BreadcrumbSchema, 3)
	assert.Equal(t, 2, page.BreadcrumbSchema[1].Position)
	assert.Equal(t, "https://shop.example/category/tools", page.BreadcrumbSchema[1].Item)
	assert.Equal(t, NoProductsMessage, page.Message, "empty listings still render actionable copy")
}

func TestAssembler_UnknownTotalUsesHasMoreHeuristic(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		full := make([]domain.Product, 20)
		return &backend.ProductPage{Products: full, Page: 1, PerPage: 20}, nil
	}}
	a := NewAssembler(testDirectory(storeCategories), NewExecutor(client, zap.NewNop()), nil, "https://shop.example", zap.NewNop())

	page, err := a.CategoryPage(context.Background(), "tools", filter.Default())
	require.NoError(t, err)
	assert.Nil(t, page.Total)
	assert.True(t, page.HasMore, "a full page with unknown total means more may exist")
}

func TestQuerier_SupersededResultIsDiscarded(t *testing.T) {
	releaseA := make(chan struct{})
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		// query A deliberately ignores cancellation so its response
		// genuinely arrives after B's, exercising the discard path
		if params.Get("q") == "a" {
			<-releaseA
		}
		return &backend.ProductPage{
			Products: []domain.Product{{Name: params.Get("q")}},
			Page:     1, PerPage: 20,
		}, nil
	}}
	q := NewQuerier(NewExecutor(client, zap.NewNop()), 0)

	type outcome struct {
		page *backend.ProductPage
		err  error
	}
	aDone := make(chan outcome, 1)
	go func() {
		fa := filter.Default()
		fa.Query = "a"
		page, err := q.Query(context.Background(), "searchbox", "", fa)
		aDone <- outcome{page, err}
	}()
	time.Sleep(50 * time.Millisecond) // let A reach the backend

	fb := filter.Default()
	fb.Query = "b"
	pageB, errB := q.Query(context.Background(), "searchbox", "", fb)
	require.NoError(t, errB)
	assert.Equal(t, "b", pageB.Products[0].Name)

	close(releaseA) // A's response now arrives, after B's
	a := <-aDone
	assert.ErrorIs(t, a.err, ErrSuperseded, "stale result must be discarded")
	assert.Nil(t, a.page)
}

func TestQuerier_StaleResultCannotMatchALaterGeneration(t *testing.T) {
	// A is slow; B supersedes it and completes, retiring the key's entry;
	// C then starts a fresh query. When A's response finally arrives it
	// must still be discarded, and C must keep its own result.
	releaseA := make(chan struct{})
	releaseC := make(chan struct{})
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		switch params.Get("q") {
		case "a":
			<-releaseA
		case "c":
			<-releaseC
		}
		return &backend.ProductPage{
			Products: []domain.Product{{Name: params.Get("q")}},
			Page:     1, PerPage: 20,
		}, nil
	}}
	q := NewQuerier(NewExecutor(client, zap.NewNop()), 0)

	query := func(term string) (*backend.ProductPage, error) {
		f := filter.Default()
		f.Query = term
		return q.Query(context.Background(), "searchbox", "", f)
	}

	type outcome struct {
		page *backend.ProductPage
		err  error
	}
	aDone := make(chan outcome, 1)
	go func() {
		page, err := query("a")
		aDone <- outcome{page, err}
	}()
	time.Sleep(50 * time.Millisecond)

	_, errB := query("b")
	require.NoError(t, errB)

	cDone := make(chan outcome, 1)
	go func() {
		page, err := query("c")
		cDone <- outcome{page, err}
	}()
	time.Sleep(50 * time.Millisecond)

	close(releaseA) // A's response arrives while C is in flight
	a := <-aDone
	assert.ErrorIs(t, a.err, ErrSuperseded, "a stale response must never be applied as current")
	assert.Nil(t, a.page)

	close(releaseC)
	cRes := <-cDone
	require.NoError(t, cRes.err, "the live query must not be displaced by the stale one")
	assert.Equal(t, "c", cRes.page.Products[0].Name)
}

func TestQuerier_DebounceAbsorbsRapidTyping(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		return emptyPage(params), nil
	}}
	q := NewQuerier(NewExecutor(client, zap.NewNop()), 80*time.Millisecond)

	first := make(chan error, 1)
	go func() {
		f := filter.Default()
		f.Query = "he"
		_, err := q.Query(context.Background(), "searchbox", "", f)
		first <- err
	}()
	time.Sleep(20 * time.Millisecond) // inside the quiet period

	f := filter.Default()
	f.Query = "helmet"
	_, err := q.Query(context.Background(), "searchbox", "", f)
	require.NoError(t, err)

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.searchCalls),
		"the superseded keystroke must never hit the backend")
}

func TestQuerier_ClearCancelsPending(t *testing.T) {
	client := &fakeClient{search: func(ctx context.Context, params url.Values) (*backend.ProductPage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	q := NewQuerier(NewExecutor(client, zap.NewNop()), 0)

	done := make(chan error, 1)
	go func() {
		_, err := q.Query(context.Background(), "searchbox", "", filter.Default())
		done <- err
	}()
	time.Sleep(30 * time.Millisecond)
	q.Clear("searchbox")

	assert.ErrorIs(t, <-done, ErrSuperseded)
}

package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/services/item/application/api"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/infrastructure/persistence/memory"
)

type itemJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedDate time.Time `json:"createdDate"`
}

func newServer(t *testing.T, seed ...*models.Item) (*httptest.Server, *memory.ItemRepository) {
	t.Helper()
	repo := memory.NewItemRepository(seed...)
	svcs := &appsvcs.Services{Item: appsvcs.NewItemService(repo, nil, nil, logger.Nop())}

	r := chi.NewRouter()
	api.Routes(r, svcs, errhttp.Writer{})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func seed(name, price string) *models.Item {
	n, err := models.NewItemName(name)
	if err != nil {
		panic(err)
	}
	return models.NewItem(n, "", models.MustPrice(price))
}

func TestCreateItem(t *testing.T) {
	srv, repo := newServer(t)
	before := time.Now()

	resp := do(t, http.MethodPost, srv.URL+"/items", `{"name":"Hat","description":"","price":15}`)

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	got := decode[itemJSON](t, resp)
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Fatalf("id is not a UUID: %q", got.ID)
	}
	if got.Name != "Hat" || got.Description != "" || got.Price != 15 {
		t.Errorf("unexpected body: %+v", got)
	}
	if d := got.CreatedDate.Sub(before); d < -time.Millisecond || d > time.Second {
		t.Errorf("createdDate %s not within 1s of request", got.CreatedDate)
	}
	if loc := resp.Header.Get("Location"); loc != "/items/"+got.ID {
		t.Errorf("Location: got %q", loc)
	}
	if repo.Len() != 1 {
		t.Errorf("expected 1 stored item, got %d", repo.Len())
	}
}

func TestCreateItem_PriceIsJSONNumber(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/items", `{"name":"Hat","price":17.25}`)
	raw := decode[map[string]json.RawMessage](t, resp)

	if string(raw["price"]) != "17.25" {
		t.Errorf("price encoded as %s", raw["price"])
	}
	for _, key := range []string{"id", "name", "description", "price", "createdDate"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestCreateItem_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"price":10}`, "name"},
		{"blank name", `{"name":"   ","price":10}`, "name"},
		{"missing price", `{"name":"Hat"}`, "price"},
		{"zero price", `{"name":"Hat","price":0}`, "price"},
		{"negative price", `{"name":"Hat","price":-3}`, "price"},
		{"price above max", `{"name":"Hat","price":10000.5}`, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, repo := newServer(t)
			resp := do(t, http.MethodPost, srv.URL+"/items", tt.body)

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			body := decode[struct {
				Fields map[string]string `json:"fields"`
			}](t, resp)
			if _, ok := body.Fields[tt.wantField]; !ok {
				t.Errorf("expected %q in fields, got %v", tt.wantField, body.Fields)
			}
			if repo.Len() != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestPriceOutsideStorablePrecision(t *testing.T) {
	prices := []string{
		"10000.0000000000000001",
		"9999.999999999999999999999999999999999",
		"0.1234567890123456789012345678901234567",
		"1e-7000",
	}
	item := seed("Hat", "15")
	srv, repo := newServer(t, item)

	for _, price := range prices {
		for _, tc := range []struct{ method, url string }{
			{http.MethodPost, srv.URL + "/items"},
			{http.MethodPut, srv.URL + "/items/" + item.ID.String()},
		} {
			t.Run(tc.method+" "+price, func(t *testing.T) {
				resp := do(t, tc.method, tc.url, `{"name":"Hat","price":`+price+`}`)

				if resp.StatusCode != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d", resp.StatusCode)
				}
				body := decode[struct {
					Fields map[string]string `json:"fields"`
				}](t, resp)
				if _, ok := body.Fields["price"]; !ok {
					t.Errorf("expected price in fields, got %v", body.Fields)
				}
			})
		}
	}
	if repo.Len() != 1 {
		t.Errorf("expected only the seeded item, got %d", repo.Len())
	}
}

func TestCreateItem_PriceAtMaximum(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/items", `{"name":"Hat","price":10000}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestCreateItem_MultibyteNameLength(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/items", `{"name":"`+strings.Repeat("é", 255)+`","price":1}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("255 characters: expected 201, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, srv.URL+"/items", `{"name":"`+strings.Repeat("é", 256)+`","price":1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("256 characters: expected 400, got %d", resp.StatusCode)
	}
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, resp)
	if _, ok := body.Fields["name"]; !ok {
		t.Errorf("expected name in fields, got %v", body.Fields)
	}
}

func TestCreateItem_MalformedJSON(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/items", `{"name":`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := decode[map[string]string](t, resp); body["error"] != "Invalid JSON" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestListItems(t *testing.T) {
	srv, _ := newServer(t, seed("Red Hat", "10"), seed("Boots", "80"), seed("hat stand", "35.5"))

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?nameToMatch=", 3},
		{"?nameToMatch=HAT", 2},
		{"?nameToMatch=boo", 1},
		{"?nameToMatch=scarf", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/items"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			items := decode[[]itemJSON](t, resp)
			if len(items) != tt.want {
				t.Errorf("expected %d items, got %d", tt.want, len(items))
			}
		})
	}
}

func TestListItems_EmptyIsArray(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/items", "")

	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetItem(t *testing.T) {
	item := seed("Hat", "15")
	srv, _ := newServer(t, item)

	resp := do(t, http.MethodGet, srv.URL+"/items/"+item.ID.String(), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decode[itemJSON](t, resp)
	if got.ID != item.ID.String() || got.Name != "Hat" || got.Price != 15 {
		t.Errorf("unexpected body: %+v", got)
	}
	if !got.CreatedDate.Equal(item.CreatedDate) {
		t.Errorf("createdDate: got %s, want %s", got.CreatedDate, item.CreatedDate)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/items/"+uuid.NewString(), "")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body, _ := io.ReadAll(resp.Body); len(body) != 0 {
		t.Errorf("expected empty body, got %q", body)
	}
}

func TestInvalidItemID(t *testing.T) {
	srv, _ := newServer(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			body := ""
			if method == http.MethodPut {
				body = `{"name":"Hat","price":1}`
			}
			resp := do(t, method, srv.URL+"/items/not-a-uuid", body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if got := decode[map[string]string](t, resp); got["error"] != "invalid item id" {
				t.Errorf("unexpected body: %v", got)
			}
		})
	}
}

func TestUpdateItem(t *testing.T) {
	item := seed("Hat", "15")
	srv, _ := newServer(t, item)
	url := srv.URL + "/items/" + item.ID.String()

	resp := do(t, http.MethodPut, url, `{"name":"Cap","description":"Cotton","price":22.5}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	got := decode[itemJSON](t, do(t, http.MethodGet, url, ""))
	if got.Name != "Cap" || got.Description != "Cotton" || got.Price != 22.5 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.ID != item.ID.String() || !got.CreatedDate.Equal(item.CreatedDate) {
		t.Errorf("id/createdDate changed: %+v", got)
	}
}

func TestUpdateItem_NotFound(t *testing.T) {
	srv, repo := newServer(t)
	resp := do(t, http.MethodPut, srv.URL+"/items/"+uuid.NewString(), `{"name":"Cap","price":5}`)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if repo.Len() != 0 {
		t.Error("update must not create an item")
	}
}

func TestUpdateItem_ValidationBeforeLookup(t *testing.T) {
	srv, _ := newServer(t)
	resp := do(t, http.MethodPut, srv.URL+"/items/"+uuid.NewString(), `{"name":"","price":5}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateItem_Invalid(t *testing.T) {
	item := seed("Hat", "15")
	srv, _ := newServer(t, item)
	url := srv.URL + "/items/" + item.ID.String()

	resp := do(t, http.MethodPut, url, `{"name":"Hat","price":20000}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if got := decode[itemJSON](t, do(t, http.MethodGet, url, "")); got.Price != 15 {
		t.Errorf("price changed to %v", got.Price)
	}
}

func TestDeleteItem(t *testing.T) {
	item := seed("Hat", "15")
	srv, _ := newServer(t, item)
	url := srv.URL + "/items/" + item.ID.String()

	if resp := do(t, http.MethodDelete, url, ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, url, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, url, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

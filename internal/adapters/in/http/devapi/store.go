// internal/adapters/in/http/devapi/store.go
package devapi

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	cartdom "storefront/internal/domain/cart"
	catalogdom "storefront/internal/domain/catalog"
	sessiondom "storefront/internal/domain/session"
)

var (
	errUnknownStock = errors.New("unknown stock")
	errUnknownLine  = errors.New("unknown cart line")
	errBadRequest   = errors.New("bad request")
)

// Seed is the catalog the dev API serves.
type Seed struct {
	Groups []catalogdom.Group
	Stocks []catalogdom.Stock
}

// DefaultSeed is a small two-level catalog.
func DefaultSeed() Seed {
	return Seed{
		Groups: []catalogdom.Group{
			{ID: 1, Name: "Coffee"},
			{ID: 2, Name: "Tea"},
			{ID: 3, Name: "Pastry"},
			{ID: 4, Name: "Espresso", ParentID: 1},
		},
		Stocks: []catalogdom.Stock{
			{ID: 42, Name: "Flat White", BasicPrice: 3.2, Price: 3.5, Description: "Double ristretto, steamed milk", GroupID: 1, Code: "FW"},
			{ID: 43, Name: "Filter Coffee", BasicPrice: 2.5, Price: 2.8, GroupID: 1, Code: "FC"},
			{ID: 44, Name: "Doppio", BasicPrice: 2.2, Price: 2.4, GroupID: 4, Code: "DP"},
			{ID: 50, Name: "Sencha", BasicPrice: 2.9, Price: 3.1, Description: "Japanese green tea", GroupID: 2, Code: "SE"},
			{ID: 51, Name: "Earl Grey", BasicPrice: 2.6, Price: 2.9, GroupID: 2, Code: "EG"},
			{ID: 60, Name: "Croissant", BasicPrice: 2.0, Price: 2.2, GroupID: 3, Code: "CR"},
			{ID: 61, Name: "Cinnamon Roll", BasicPrice: 3.0, Price: 3.4, GroupID: 3, Code: "CN"},
		},
	}
}

// store is the in-memory state behind the handlers.
type store struct {
	mu       sync.Mutex
	tokens   map[string]sessiondom.APICredentials
	groups   []catalogdom.Group
	stocks   map[int64]catalogdom.Stock
	order    []int64
	carts    map[int64][]cartdom.Item
	lineInfo map[int64]lineKey
	nextLine int64
}

// lineKey identifies lines that merge on repeated adds.
type lineKey struct {
	sessionID   int64
	stockID     int64
	information string
	additions   string
}

func newStore(seed Seed) *store {
	s := &store{
		tokens:   map[string]sessiondom.APICredentials{},
		groups:   slices.Clone(seed.Groups),
		stocks:   make(map[int64]catalogdom.Stock, len(seed.Stocks)),
		carts:    map[int64][]cartdom.Item{},
		lineInfo: map[int64]lineKey{},
		nextLine: 1000,
	}
	for _, st := range seed.Stocks {
		s.stocks[st.ID] = st
		s.order = append(s.order, st.ID)
	}
	return s
}

func (s *store) issueToken(creds sessiondom.APICredentials) (string, error) {
	if strings.TrimSpace(creds.Email) == "" {
		return "", errBadRequest
	}
	tok := uuid.NewString()
	s.mu.Lock()
	s.tokens[tok] = creds
	s.mu.Unlock()
	return tok, nil
}

// ValidToken implements middleware.TokenValidator.
func (s *store) ValidToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

func (s *store) listGroups() []catalogdom.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.groups)
}

// listStocks honours stock_list when non-empty; other filters are accepted and ignored.
func (s *store) listStocks(q catalogdom.StocksQuery) []catalogdom.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := map[int64]bool{}
	for _, id := range q.StockList {
		want[id] = true
	}

	out := make([]catalogdom.Stock, 0, len(s.order))
	for _, id := range s.order {
		if len(want) > 0 && !want[id] {
			continue
		}
		st := s.stocks[id]
		if !q.IncludePriceList {
			st.Price = st.BasicPrice
		}
		out = append(out, st)
	}
	return out
}

func (s *store) cart(sessionID int64) []cartdom.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.carts[sessionID])
}

func (s *store) add(req cartdom.AddRequest) error {
	if req.SessionID == 0 || req.Quantity < 1 {
		return errBadRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stocks[req.StockID]
	if !ok {
		return errUnknownStock
	}

	key := lineKey{
		sessionID:   req.SessionID,
		stockID:     req.StockID,
		information: strings.TrimSpace(req.Information),
		additions:   joinIDs(req.Additions),
	}
	items := s.carts[req.SessionID]
	for i := range items {
		if s.lineInfo[items[i].ID] == key {
			items[i].Quantity += req.Quantity
			items[i].SumPrice = cartdom.LineTotal(items[i].Price, items[i].Quantity)
			return nil
		}
	}

	s.nextLine++
	line := cartdom.Item{
		ID:       s.nextLine,
		StockID:  st.ID,
		Name:     st.Name,
		Price:    st.Price,
		SumPrice: cartdom.LineTotal(st.Price, req.Quantity),
		Quantity: req.Quantity,
		MoreInfo: key.information,
		Image:    st.Image,
	}
	s.carts[req.SessionID] = append(items, line)
	s.lineInfo[line.ID] = key
	return nil
}

// update sets a line's quantity; a quantity of 0 or less removes the line.
func (s *store) update(req cartdom.UpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.lineInfo[req.ID]
	if !ok {
		return errUnknownLine
	}
	if req.Quantity <= 0 {
		s.removeLocked(key.sessionID, req.ID)
		return nil
	}
	items := s.carts[key.sessionID]
	for i := range items {
		if items[i].ID == req.ID {
			items[i].Quantity = req.Quantity
			items[i].SumPrice = cartdom.LineTotal(items[i].Price, req.Quantity)
			return nil
		}
	}
	return errUnknownLine
}

func (s *store) remove(req cartdom.DeleteRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.lineInfo[req.ID]
	if !ok {
		return errUnknownLine
	}
	s.removeLocked(key.sessionID, req.ID)
	return nil
}

func (s *store) removeLocked(sessionID, lineID int64) {
	s.carts[sessionID] = slices.DeleteFunc(s.carts[sessionID], func(it cartdom.Item) bool {
		return it.ID == lineID
	})
	delete(s.lineInfo, lineID)
}

func joinIDs(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	var b strings.Builder
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}

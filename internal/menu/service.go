// Package menu provides the application service for workspace menu operations.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/keygen"
)

const (
	// DefaultRetries is the number of retries after a failed menu fetch.
	DefaultRetries = 3
	// DefaultRetryDelay is the fixed delay between fetch attempts.
	DefaultRetryDelay = 500 * time.Millisecond
	// AppendIndex places a moved item after all of its new siblings.
	AppendIndex = math.MaxInt
)

// ErrNotConfigured is returned when a mutating operation needs a port that
// was not supplied.
var ErrNotConfigured = errors.New("menu service port not configured")

// MenuFetcher abstracts loading the menu structure of one menu slot.
type MenuFetcher interface {
	FetchMenu(ctx context.Context, ref domain.MenuRef) (*domain.MenuStructure, error)
}

// PositionWriter abstracts persisting a batch of position updates.
type PositionWriter interface {
	WritePositions(ctx context.Context, ref domain.MenuRef, updates []domain.PositionUpdate) error
}

// ItemWriter abstracts creating and updating single menu items.
type ItemWriter interface {
	CreateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error
	UpdateItem(ctx context.Context, ref domain.MenuRef, item domain.MenuItemRecord) error
}

// ItemDeleter abstracts deleting menu items by ID.
type ItemDeleter interface {
	DeleteItems(ctx context.Context, ref domain.MenuRef, ids []string) error
}

// Locker abstracts advisory lock acquisition for mutating commands.
type Locker interface {
	TryLock(ctx context.Context) error
	Unlock() error
}

// IDGenerator abstracts creating IDs for new menu items.
type IDGenerator interface {
	NewID() (string, error)
}

// KeyGenerator abstracts deriving a unique key for a new menu item.
type KeyGenerator interface {
	Generate(name string, taken map[string]bool) string
}

type noopLocker struct{}

func (noopLocker) TryLock(ctx context.Context) error { return ctx.Err() }
func (noopLocker) Unlock() error                     { return nil }

// Option configures a Service.
type Option func(*Service)

// WithPositionWriter sets the port used to persist positions.
func WithPositionWriter(w PositionWriter) Option {
	return func(s *Service) { s.positions = w }
}

// WithItemWriter sets the port used to create and update items.
func WithItemWriter(w ItemWriter) Option {
	return func(s *Service) { s.writer = w }
}

// WithItemDeleter sets the port used to delete items.
func WithItemDeleter(d ItemDeleter) Option {
	return func(s *Service) { s.deleter = d }
}

// WithLocker sets the advisory locker taken by mutating operations.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithIDGenerator sets the generator for new item IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithKeyGenerator sets the generator for new item keys.
func WithKeyGenerator(g KeyGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.keys = g
		}
	}
}

// WithRetry sets how often a failed fetch is retried and the delay between attempts.
func WithRetry(retries int, delay time.Duration) Option {
	return func(s *Service) {
		s.retries = max(0, retries)
		s.delay = max(0, delay)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResolveOptions sets the options applied on every menu resolution.
func WithResolveOptions(opts ...domain.ResolveOption) Option {
	return func(s *Service) { s.resolveOpts = append(s.resolveOpts, opts...) }
}

// Service coordinates menu reads and mutations across the collaborator ports.
type Service struct {
	fetcher     MenuFetcher
	positions   PositionWriter
	writer      ItemWriter
	deleter     ItemDeleter
	locker      Locker
	ids         IDGenerator
	keys        KeyGenerator
	retries     int
	delay       time.Duration
	logger      *slog.Logger
	resolveOpts []domain.ResolveOption
}

// NewService creates a Service reading menus through fetcher.
func NewService(fetcher MenuFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		locker:  noopLocker{},
		keys:    keygen.Generator{},
		retries: DefaultRetries,
		delay:   DefaultRetryDelay,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadResult holds the items of one menu slot.
type LoadResult struct {
	Items []domain.MenuItemRecord
	// Degraded is set when every fetch attempt failed and Items is empty.
	Degraded bool
}

// Load fetches the menu, retrying failed attempts. When all attempts fail the
// failure is logged and an empty, degraded result is returned.
func (s *Service) Load(ctx context.Context, ref domain.MenuRef) *LoadResult {
	items, err := s.Fetch(ctx, ref)
	if err != nil {
		s.logger.Error("menu fetch failed, using empty menu",
			"workspace", ref.Workspace, "menu", ref.MenuKey, "error", err)
		return &LoadResult{Items: []domain.MenuItemRecord{}, Degraded: true}
	}
	return &LoadResult{Items: items}
}

// Fetch loads the nested items of one menu slot, retrying failed attempts,
// and returns the last error when all attempts fail.
func (s *Service) Fetch(ctx context.Context, ref domain.MenuRef) ([]domain.MenuItemRecord, error) {
	attempt := 0
	op := func() (*domain.MenuStructure, error) {
		attempt++
		ms, err := s.fetcher.FetchMenu(ctx, ref)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return ms, err
	}
	notify := func(err error, next time.Duration) {
		s.logger.Warn("menu fetch attempt failed",
			"workspace", ref.Workspace, "menu", ref.MenuKey,
			"attempt", attempt, "retry_in", next, "error", err)
	}

	ms, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.delay)),
		backoff.WithMaxTries(uint(s.retries+1)),
		backoff.WithNotify(notify))
	if err != nil {
		return nil, fmt.Errorf("fetching menu %s: %w", ref, err)
	}

	items, ok := ms.Group(ref.MenuKey)
	if !ok {
		items = ms.Items()
	}
	return domain.EnsureNested(items), nil
}

// Resolve returns the display entries of a menu slot for lang.
func (s *Service) Resolve(ctx context.Context, ref domain.MenuRef, lang string) []domain.MenuEntry {
	return s.Construct(s.Load(ctx, ref).Items, lang)
}

// Construct converts loaded items into display entries using the service's
// resolve options.
func (s *Service) Construct(items []domain.MenuItemRecord, lang string) []domain.MenuEntry {
	return domain.ConstructMenuItems(items, lang, s.resolveOpts...)
}

// ResolveMany resolves several menu slots of one workspace concurrently.
func (s *Service) ResolveMany(ctx context.Context, workspace, lang string, menuKeys ...string) map[string][]domain.MenuEntry {
	results := make([][]domain.MenuEntry, len(menuKeys))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, key := range menuKeys {
		g.Go(func() error {
			results[i] = s.Resolve(gCtx, domain.MenuRef{Workspace: workspace, MenuKey: key}, lang)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string][]domain.MenuEntry, len(menuKeys))
	for i, key := range menuKeys {
		out[key] = results[i]
	}
	return out
}

// Match resolves the menu and returns the entry best matching path, or nil.
func (s *Service) Match(ctx context.Context, ref domain.MenuRef, lang, path string) *domain.Match {
	return domain.FindActiveItemBestMatch(s.Resolve(ctx, ref, lang), path)
}

// Tree builds the editor tree of a menu slot and replays state onto it.
func (s *Service) Tree(ctx context.Context, ref domain.MenuRef, state *domain.ExpansionState) []*domain.TreeNode {
	nodes := domain.MapToTreeNodes(s.Load(ctx, ref).Items)
	state.Apply(nodes)
	return nodes
}

// MoveRequest describes a drag-and-drop move.
type MoveRequest struct {
	Source domain.Selector
	// Target is the new parent; nil moves the item to the root level.
	Target *domain.Selector
	// Index is the position among the new siblings; AppendIndex appends.
	Index int
}

// MoveResult holds the outcome of a move.
type MoveResult struct {
	Item        domain.MenuItemRecord
	OldParentID string
	NewParentID string
	Positions   []domain.NodePosition
	Updates     []domain.PositionUpdate
}

// Move relocates an item and recomputes the positions of its old and new
// siblings, acquiring an advisory lock first. Updates are persisted only
// when apply is set.
func (s *Service) Move(ctx context.Context, ref domain.MenuRef, req MoveRequest, apply bool) (*MoveResult, error) {
	if apply && s.positions == nil {
		return nil, fmt.Errorf("move: position writer: %w", ErrNotConfigured)
	}
	if err := s.locker.TryLock(ctx); err != nil {
		return nil, err
	}
	defer s.locker.Unlock()

	items, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	flat := domain.FlattenRecords(items)

	src, err := domain.SelectRecord(flat, req.Source)
	if err != nil {
		return nil, err
	}
	newParentID := ""
	if req.Target != nil {
		target, err := domain.SelectRecord(flat, *req.Target)
		if err != nil {
			return nil, fmt.Errorf("move target: %w", err)
		}
		newParentID = target.ID
	}

	tree, oldParentID, err := domain.MoveNode(domain.MapToTreeNodes(items), src.ID, newParentID, req.Index)
	if err != nil {
		return nil, err
	}
	positions, err := domain.CalculateNewNodesPositions(oldParentID, newParentID, tree)
	if err != nil {
		s.logger.Error("position recalculation failed",
			"workspace", ref.Workspace, "menu", ref.MenuKey, "item", src.ID, "error", err)
		return nil, err
	}
	domain.ApplyPositions(tree, positions)

	result := &MoveResult{
		Item:        domain.FindNodeByKey(tree, src.ID).Data,
		OldParentID: oldParentID,
		NewParentID: newParentID,
		Positions:   positions,
		Updates:     domain.PositionUpdates(tree, positions),
	}
	if !apply {
		return result, nil
	}
	if err := s.positions.WritePositions(ctx, ref, result.Updates); err != nil {
		return nil, fmt.Errorf("writing positions: %w", err)
	}
	return result, nil
}

// AddRequest describes a new menu item.
type AddRequest struct {
	Name string
	// Parent is the parent item; nil adds at the root level.
	Parent   *domain.Selector
	URL      string
	External bool
	Badge    string
	I18n     map[string]string
	Disabled bool
}

// AddResult holds the created item.
type AddResult struct {
	Item domain.MenuItemRecord
}

// Add creates a menu item after its future siblings, acquiring an advisory
// lock first. The item is persisted only when apply is set.
func (s *Service) Add(ctx context.Context, ref domain.MenuRef, req AddRequest, apply bool) (*AddResult, error) {
	if apply && s.writer == nil {
		return nil, fmt.Errorf("add: item writer: %w", ErrNotConfigured)
	}
	if s.ids == nil {
		return nil, fmt.Errorf("add: id generator: %w", ErrNotConfigured)
	}
	if err := s.locker.TryLock(ctx); err != nil {
		return nil, err
	}
	defer s.locker.Unlock()

	items, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	flat := domain.FlattenRecords(items)

	siblings := items
	parentID := ""
	if req.Parent != nil {
		parent, err := domain.SelectRecord(flat, *req.Parent)
		if err != nil {
			return nil, fmt.Errorf("add parent: %w", err)
		}
		parentID = parent.ID
		siblings = childrenOf(items, parent.ID)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}

	item := domain.MenuItemRecord{
		ID:           id,
		Key:          s.keys.Generate(req.Name, takenKeys(flat)),
		ParentItemID: parentID,
		Name:         req.Name,
		I18n:         req.I18n,
		URL:          req.URL,
		External:     req.External,
		Position:     domain.NextPosition(siblings),
		Badge:        req.Badge,
		Disabled:     req.Disabled,
	}

	if apply {
		if err := s.writer.CreateItem(ctx, ref, item); err != nil {
			return nil, fmt.Errorf("creating item: %w", err)
		}
	}
	return &AddResult{Item: item}, nil
}

// UpdateRequest lists the fields to change; nil fields are left untouched.
// I18n entries are merged and an empty translation removes the language.
type UpdateRequest struct {
	Name     *string
	URL      *string
	External *bool
	Badge    *string
	Disabled *bool
	I18n     map[string]string
}

// UpdateResult holds an item before and after an update.
type UpdateResult struct {
	Before domain.MenuItemRecord
	After  domain.MenuItemRecord
}

// Update changes the fields of one item, acquiring an advisory lock first.
func (s *Service) Update(ctx context.Context, ref domain.MenuRef, sel domain.Selector, req UpdateRequest, apply bool) (*UpdateResult, error) {
	if apply && s.writer == nil {
		return nil, fmt.Errorf("update: item writer: %w", ErrNotConfigured)
	}
	if err := s.locker.TryLock(ctx); err != nil {
		return nil, err
	}
	defer s.locker.Unlock()

	items, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	before, err := domain.SelectRecord(domain.FlattenRecords(items), sel)
	if err != nil {
		return nil, err
	}

	after := before
	if req.Name != nil {
		after.Name = *req.Name
	}
	if req.URL != nil {
		after.URL = *req.URL
	}
	if req.External != nil {
		after.External = *req.External
	}
	if req.Badge != nil {
		after.Badge = *req.Badge
	}
	if req.Disabled != nil {
		after.Disabled = *req.Disabled
	}
	if len(req.I18n) > 0 {
		merged := maps.Clone(before.I18n)
		if merged == nil {
			merged = make(map[string]string, len(req.I18n))
		}
		for lang, label := range req.I18n {
			if label == "" {
				delete(merged, lang)
				continue
			}
			merged[lang] = label
		}
		after.I18n = merged
	}

	if apply {
		if err := s.writer.UpdateItem(ctx, ref, after); err != nil {
			return nil, fmt.Errorf("updating item: %w", err)
		}
	}
	return &UpdateResult{Before: before, After: after}, nil
}

// DeleteResult holds the outcome of a delete.
type DeleteResult struct {
	Deleted []string
	// Updates re-parents and renumbers promoted children.
	Updates []domain.PositionUpdate
}

// Delete removes an item, acquiring an advisory lock first. The default mode
// refuses items with children; recursive removes the subtree; promote moves
// the children into the deleted item's place.
func (s *Service) Delete(ctx context.Context, ref domain.MenuRef, sel domain.Selector, mode domain.DeleteMode, apply bool) (*DeleteResult, error) {
	if apply && s.deleter == nil {
		return nil, fmt.Errorf("delete: item deleter: %w", ErrNotConfigured)
	}
	if err := s.locker.TryLock(ctx); err != nil {
		return nil, err
	}
	defer s.locker.Unlock()

	items, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	target, err := domain.SelectRecord(domain.FlattenRecords(items), sel)
	if err != nil {
		return nil, err
	}

	tree := domain.MapToTreeNodes(items)
	node := domain.FindNodeByKey(tree, target.ID)

	result := &DeleteResult{Deleted: []string{target.ID}}
	switch mode {
	case domain.DeleteModeDefault:
		if !node.Leaf {
			return nil, fmt.Errorf("%s: %w", target.ID, domain.ErrItemHasChildren)
		}
	case domain.DeleteModeRecursive:
		for _, r := range domain.FlattenTree(node.Children) {
			result.Deleted = append(result.Deleted, r.ID)
		}
	case domain.DeleteModePromote:
		updates, err := promoteChildren(tree, node)
		if err != nil {
			return nil, err
		}
		result.Updates = updates
	}

	if !apply {
		return result, nil
	}
	if len(result.Updates) > 0 {
		if s.positions == nil {
			return nil, fmt.Errorf("delete: position writer: %w", ErrNotConfigured)
		}
		if err := s.positions.WritePositions(ctx, ref, result.Updates); err != nil {
			return nil, fmt.Errorf("writing positions: %w", err)
		}
	}
	if err := s.deleter.DeleteItems(ctx, ref, result.Deleted); err != nil {
		return nil, fmt.Errorf("deleting items: %w", err)
	}
	return result, nil
}

// promoteChildren moves the children of node into its place and returns the
// position updates of the resulting sibling group.
func promoteChildren(tree []*domain.TreeNode, node *domain.TreeNode) ([]domain.PositionUpdate, error) {
	parentID := domain.ParentKey(tree, node.Key)
	index := domain.SiblingIndex(tree, node.Key)

	children := append([]*domain.TreeNode(nil), node.Children...)
	var err error
	for i, c := range children {
		tree, _, err = domain.MoveNode(tree, c.Key, parentID, index+1+i)
		if err != nil {
			return nil, err
		}
	}
	tree, _, _, err = domain.RemoveNode(tree, node.Key)
	if err != nil {
		return nil, err
	}

	positions, err := domain.CalculateNewNodesPositions(parentID, parentID, tree)
	if err != nil {
		return nil, err
	}
	domain.ApplyPositions(tree, positions)
	return domain.PositionUpdates(tree, positions), nil
}

// CheckResult holds the findings of a menu check.
type CheckResult struct {
	Findings []domain.Finding
}

// Check validates the menu hierarchy without acquiring an advisory lock.
func (s *Service) Check(ctx context.Context, ref domain.MenuRef) (*CheckResult, error) {
	items, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &CheckResult{Findings: domain.CheckHierarchy(items)}, nil
}

// CompactResult holds the renumbering planned or applied by Compact.
type CompactResult struct {
	Updates []domain.PositionUpdate
}

// Compact renumbers every sibling group to 0..n-1, acquiring an advisory lock
// first. Updates are persisted only when apply is set.
func (s *Service) Compact(ctx context.Context, ref domain.MenuRef, apply bool) (*CompactResult, error) {
	if apply && s.positions == nil {
		return nil, fmt.Errorf("compact: position writer: %w", ErrNotConfigured)
	}
	if err := s.locker.TryLock(ctx); err != nil {
		return nil, err
	}
	defer s.locker.Unlock()

	items, err := s.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	result := &CompactResult{Updates: domain.CompactPositions(items)}
	if !apply || len(result.Updates) == 0 {
		return result, nil
	}
	if err := s.positions.WritePositions(ctx, ref, result.Updates); err != nil {
		return nil, fmt.Errorf("writing positions: %w", err)
	}
	return result, nil
}

// childrenOf returns the direct children of the record with the given ID.
func childrenOf(items []domain.MenuItemRecord, id string) []domain.MenuItemRecord {
	for _, it := range items {
		if it.ID == id {
			return it.Children
		}
		if found := childrenOf(it.Children, id); found != nil {
			return found
		}
	}
	return nil
}

func takenKeys(flat []domain.MenuItemRecord) map[string]bool {
	taken := make(map[string]bool, len(flat))
	for _, r := range flat {
		taken[r.Key] = true
	}
	return taken
}

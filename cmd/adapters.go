package cmd

import (
	"context"
	"fmt"

	"github.com/onecx/workspace-menu/internal/domain"
	"github.com/onecx/workspace-menu/internal/menu"
)

// MenuService abstracts the menu.Service methods used by the adapters.
type MenuService interface {
	Load(ctx context.Context, ref domain.MenuRef) *menu.LoadResult
	Fetch(ctx context.Context, ref domain.MenuRef) ([]domain.MenuItemRecord, error)
	Construct(items []domain.MenuItemRecord, lang string) []domain.MenuEntry
	ResolveMany(ctx context.Context, workspace, lang string, menuKeys ...string) map[string][]domain.MenuEntry
	Match(ctx context.Context, ref domain.MenuRef, lang, path string) *domain.Match
	Tree(ctx context.Context, ref domain.MenuRef, state *domain.ExpansionState) []*domain.TreeNode
	Move(ctx context.Context, ref domain.MenuRef, req menu.MoveRequest, apply bool) (*menu.MoveResult, error)
	Add(ctx context.Context, ref domain.MenuRef, req menu.AddRequest, apply bool) (*menu.AddResult, error)
	Update(ctx context.Context, ref domain.MenuRef, sel domain.Selector, req menu.UpdateRequest, apply bool) (*menu.UpdateResult, error)
	Delete(ctx context.Context, ref domain.MenuRef, sel domain.Selector, mode domain.DeleteMode, apply bool) (*menu.DeleteResult, error)
	Check(ctx context.Context, ref domain.MenuRef) (*menu.CheckResult, error)
	Compact(ctx context.Context, ref domain.MenuRef, apply bool) (*menu.CompactResult, error)
}

// scope resolves the menu slot and language of the current invocation.
type scope interface {
	Ref() domain.MenuRef
	Lang() string
}

// parseOptionalSelector parses s, returning nil for "" and the root tokens.
func parseOptionalSelector(s string) (*domain.Selector, error) {
	if s == "" || domain.IsRootSelector(s) {
		return nil, nil
	}
	sel, err := domain.ParseSelector(s)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return &sel, nil
}

// --- listAdapter ---

type listAdapter struct {
	svc   MenuService
	scope scope
}

func (a *listAdapter) List(ctx context.Context) (*ListResult, error) {
	ref := a.scope.Ref()
	items, err := a.svc.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &ListResult{Ref: ref, Nodes: domain.MapToTreeNodes(items)}, nil
}

// --- resolveAdapter ---

type resolveAdapter struct {
	svc   MenuService
	scope scope
}

func (a *resolveAdapter) Resolve(ctx context.Context, menuKeys []string) (*ResolveResult, error) {
	ref := a.scope.Ref()
	result := &ResolveResult{Workspace: ref.Workspace, Lang: a.scope.Lang()}

	if len(menuKeys) == 0 {
		loaded := a.svc.Load(ctx, ref)
		result.Menus = []ResolvedMenu{{
			MenuKey:  ref.MenuKey,
			Items:    a.svc.Construct(loaded.Items, result.Lang),
			Degraded: loaded.Degraded,
		}}
		return result, nil
	}

	resolved := a.svc.ResolveMany(ctx, ref.Workspace, result.Lang, menuKeys...)
	for _, key := range menuKeys {
		result.Menus = append(result.Menus, ResolvedMenu{MenuKey: key, Items: resolved[key]})
	}
	return result, nil
}

// --- matchAdapter ---

type matchAdapter struct {
	svc   MenuService
	scope scope
}

func (a *matchAdapter) Match(ctx context.Context, path string) (*domain.Match, error) {
	m := a.svc.Match(ctx, a.scope.Ref(), a.scope.Lang(), path)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, path)
	}
	return m, nil
}

// --- moveAdapter ---

type moveAdapter struct {
	svc   MenuService
	scope scope
}

func (a *moveAdapter) Move(ctx context.Context, selector, to string, index int, apply bool) (*MoveResult, error) {
	src, err := domain.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	target, err := parseOptionalSelector(to)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		index = menu.AppendIndex
	}

	res, err := a.svc.Move(ctx, a.scope.Ref(), menu.MoveRequest{Source: src, Target: target, Index: index}, apply)
	if err != nil {
		return nil, err
	}
	return &MoveResult{
		Item:        res.Item,
		OldParentID: res.OldParentID,
		NewParentID: res.NewParentID,
		Updates:     nonNilUpdates(res.Updates),
	}, nil
}

// --- addAdapter ---

type addAdapter struct {
	svc   MenuService
	scope scope
}

func (a *addAdapter) Add(ctx context.Context, name string, opts AddOptions, apply bool) (*AddResult, error) {
	parent, err := parseOptionalSelector(opts.Parent)
	if err != nil {
		return nil, err
	}
	res, err := a.svc.Add(ctx, a.scope.Ref(), menu.AddRequest{
		Name:     name,
		Parent:   parent,
		URL:      opts.URL,
		External: opts.External,
		Badge:    opts.Badge,
		I18n:     opts.I18n,
		Disabled: opts.Disabled,
	}, apply)
	if err != nil {
		return nil, err
	}
	return &AddResult{Item: res.Item}, nil
}

// --- updateAdapter ---

type updateAdapter struct {
	svc   MenuService
	scope scope
}

func (a *updateAdapter) Update(ctx context.Context, selector string, req menu.UpdateRequest, apply bool) (*UpdateResult, error) {
	sel, err := domain.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	res, err := a.svc.Update(ctx, a.scope.Ref(), sel, req, apply)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Before: res.Before, After: res.After}, nil
}

func (a *updateAdapter) Rename(ctx context.Context, selector, name string, apply bool) (*RenameResult, error) {
	res, err := a.Update(ctx, selector, menu.UpdateRequest{Name: &name}, apply)
	if err != nil {
		return nil, err
	}
	return &RenameResult{ID: res.After.ID, Key: res.After.Key, OldName: res.Before.Name, NewName: res.After.Name}, nil
}

// --- i18nAdapter ---

type i18nAdapter struct {
	svc   MenuService
	scope scope
}

func (a *i18nAdapter) ListTranslations(ctx context.Context, selector string) (*I18nListResult, error) {
	sel, err := domain.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	items, err := a.svc.Fetch(ctx, a.scope.Ref())
	if err != nil {
		return nil, err
	}
	rec, err := domain.SelectRecord(domain.FlattenRecords(items), sel)
	if err != nil {
		return nil, err
	}
	return &I18nListResult{Item: itemInfo(rec), Translations: nonNilMap(rec.I18n)}, nil
}

func (a *i18nAdapter) SetTranslation(ctx context.Context, selector, lang, label string, apply bool) (*I18nModifyResult, error) {
	return a.modify(ctx, selector, lang, label, apply)
}

func (a *i18nAdapter) RemoveTranslation(ctx context.Context, selector, lang string, apply bool) (*I18nModifyResult, error) {
	return a.modify(ctx, selector, lang, "", apply)
}

func (a *i18nAdapter) modify(ctx context.Context, selector, lang, label string, apply bool) (*I18nModifyResult, error) {
	sel, err := domain.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	res, err := a.svc.Update(ctx, a.scope.Ref(), sel, menu.UpdateRequest{I18n: map[string]string{lang: label}}, apply)
	if err != nil {
		return nil, err
	}
	return &I18nModifyResult{Item: itemInfo(res.After), Lang: lang, Label: label, Translations: nonNilMap(res.After.I18n)}, nil
}

// --- deleteAdapter ---

type deleteAdapter struct {
	svc   MenuService
	scope scope
}

func (a *deleteAdapter) Delete(ctx context.Context, selector string, mode domain.DeleteMode, apply bool) (*DeleteResult, error) {
	sel, err := domain.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	res, err := a.svc.Delete(ctx, a.scope.Ref(), sel, mode, apply)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{Deleted: res.Deleted, Updates: nonNilUpdates(res.Updates)}, nil
}

// --- checkAdapter ---

type checkAdapter struct {
	svc   MenuService
	scope scope
}

func (a *checkAdapter) Check(ctx context.Context) (*CheckResult, error) {
	res, err := a.svc.Check(ctx, a.scope.Ref())
	if err != nil {
		return nil, err
	}
	findings := make([]CheckFinding, 0, len(res.Findings))
	for _, f := range res.Findings {
		findings = append(findings, convertFinding(f))
	}
	return &CheckResult{Findings: findings}, nil
}

// --- compactAdapter ---

type compactAdapter struct {
	svc   MenuService
	scope scope
}

func (a *compactAdapter) Compact(ctx context.Context, apply bool) (*CompactResult, error) {
	res, err := a.svc.Compact(ctx, a.scope.Ref(), apply)
	if err != nil {
		return nil, err
	}
	return &CompactResult{Updates: nonNilUpdates(res.Updates), Applied: apply && len(res.Updates) > 0}, nil
}

// --- repairAdapter ---

// repairAdapter compacts positions and reports the findings compaction
// cannot resolve.
type repairAdapter struct {
	svc   MenuService
	scope scope
}

func (a *repairAdapter) Repair(ctx context.Context) (*RepairResult, error) {
	ref := a.scope.Ref()
	compacted, err := a.svc.Compact(ctx, ref, true)
	if err != nil {
		return nil, err
	}
	check, err := a.svc.Check(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := &RepairResult{Repairs: []RepairAction{}, Unrepaired: []CheckFinding{}}
	for _, u := range compacted.Updates {
		result.Repairs = append(result.Repairs, RepairAction{
			Type:   FindingPositionGap,
			Action: "renumbered",
			ItemID: u.ID,
			New:    fmt.Sprint(u.Position),
		})
	}
	for _, f := range check.Findings {
		result.Unrepaired = append(result.Unrepaired, convertFinding(f))
	}
	return result, nil
}

func convertFinding(f domain.Finding) CheckFinding {
	return CheckFinding{
		Type:     f.Type,
		Severity: Severity(f.Severity),
		Message:  f.Message,
		ItemID:   f.ItemID,
	}
}

func itemInfo(r domain.MenuItemRecord) ItemInfo {
	return ItemInfo{ID: r.ID, Key: r.Key, Name: r.Name}
}

func nonNilUpdates(u []domain.PositionUpdate) []domain.PositionUpdate {
	if u == nil {
		return []domain.PositionUpdate{}
	}
	return u
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

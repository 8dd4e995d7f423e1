package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// BuildCommandTree creates the root command with every subcommand wired to
// svc. With a nil svc, project commands return ErrNotInProject and only init
// works.
func BuildCommandTree(svc MenuService, app *App) *cobra.Command {
	root := NewRootCmd()

	var (
		list     ListRunner
		resolve  ResolveRunner
		match    MatchRunner
		move     MoveRunner
		add      AddRunner
		update   UpdateRunner
		rename   RenameRunner
		i18n     I18nService
		del      DeleteRunner
		check    CheckRunner
		repair   RepairRunner
		compact  CompactRunner
		importer ImportRunner
		serve    ServeRunner
	)
	if svc != nil {
		list = &listAdapter{svc: svc, scope: app}
		resolve = &resolveAdapter{svc: svc, scope: app}
		match = &matchAdapter{svc: svc, scope: app}
		move = &moveAdapter{svc: svc, scope: app}
		add = &addAdapter{svc: svc, scope: app}
		updater := &updateAdapter{svc: svc, scope: app}
		update, rename = updater, updater
		i18n = &i18nAdapter{svc: svc, scope: app}
		del = &deleteAdapter{svc: svc, scope: app}
		check = &checkAdapter{svc: svc, scope: app}
		repair = &repairAdapter{svc: svc, scope: app}
		compact = &compactAdapter{svc: svc, scope: app}
		if app != nil {
			importer = &importAdapter{store: app.Store, scope: app}
			serve = &serveAdapter{svc: svc, app: app}
		}
	}

	root.AddCommand(
		NewInitCmd(os.Getwd),
		NewImportCmd(importer),
		NewListCmd(list),
		NewResolveCmd(resolve),
		NewMatchCmd(match),
		NewMoveCmd(move),
		NewAddCmd(add),
		NewUpdateCmd(update),
		NewRenameCmd(rename),
		NewI18nCmd(i18n),
		NewDeleteCmd(del),
		NewCheckCmd(check),
		NewDoctorCmd(check, repair),
		NewCompactCmd(compact),
		NewServeCmd(serve),
	)
	return root
}

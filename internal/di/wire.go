//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"thriveup/internal/dbmongo"
	"thriveup/internal/dbmysql"
	"thriveup/internal/notify"
)

// InitializeApplication builds the full engine graph: config, logger, the
// three stores and every notify service.
func InitializeApplication() (*Application, error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideIdentity,
		dbmysql.NewMySQL,
		dbmongo.NewMongoConnection,
		ProvideCursorRepository,
		dbmongo.NewNotificationRepository,
		dbmongo.NewCounterRepository,
		dbmongo.NewTeamRepository,
		dbmongo.NewChatRepository,
		dbmysql.NewUserRepository,
		dbmysql.NewFriendRepository,
		notify.NewWriter,
		ProvideWatchManager,
		ProvideFriendNotifier,
		notify.NewTeamCoordinator,
		notify.NewService,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}

package di

import (
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"thriveup/internal/common"
	"thriveup/internal/config"
	"thriveup/internal/dbmongo"
	"thriveup/internal/dbsqlite"
	"thriveup/internal/notify"
)

// Application aggregates everything the daemon needs.
type Application struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Mongo    *dbmongo.MongoClient
	Service  *notify.Service
	Teams    *notify.TeamCoordinator
	Friends  *notify.FriendNotifier
	Writer   *notify.Writer
	Watcher  *notify.WatchManager
	Identity notify.Identity
}

func ProvideConfig() *config.Config {
	return config.Load()
}

func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return common.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
}

// ProvideIdentity reads the daemon's fixed local user from the environment.
func ProvideIdentity() notify.Identity {
	return notify.StaticIdentity(os.Getenv("NOTIFY_USER_ID"))
}

func ProvideCursorRepository(cfg *config.Config) (notify.CursorRepository, error) {
	return dbsqlite.Open(cfg.Cursor.Path)
}

func ProvideWatchManager(
	chats notify.ChatRepository,
	cursor notify.CursorRepository,
	writer *notify.Writer,
	users notify.UserRepository,
	cfg *config.Config,
	log *zap.Logger,
) *notify.WatchManager {
	window := time.Duration(cfg.WatermarkWindow()) * time.Hour
	return notify.NewWatchManager(chats, cursor, writer, users, window, log)
}

func ProvideFriendNotifier(
	identity notify.Identity,
	users notify.UserRepository,
	friends notify.FriendRepository,
	notes notify.NotificationRepository,
	writer *notify.Writer,
	cfg *config.Config,
	log *zap.Logger,
) *notify.FriendNotifier {
	return notify.NewFriendNotifier(identity, users, friends, notes, writer,
		cfg.Notify.VerifySampleSize, log)
}

package middlewares

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

const (
	InitDataHeader = "X-Telegram-Init-Data"
	initDataQuery  = "tg_init_data"
	initDataMaxAge = 24 * time.Hour
)

// AdminAuthConfig доступ к /admin: basic auth или initData Telegram Web App от администратора
type AdminAuthConfig struct {
	User     string
	Password string // пусто - basic auth выключен
	BotToken string // пусто - initData не проверяется
	AdminIDs []int64
}

// AdminAuth пропускает запрос, если прошла любая из проверок, иначе 401
func AdminAuth(cfg AdminAuthConfig, log *slog.Logger) gin.HandlerFunc {
	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	return func(c *gin.Context) {
		if checkBasicAuth(c.Request, cfg.User, cfg.Password) {
			c.Set("admin", cfg.User)
			c.Next()
			return
		}

		initData := c.GetHeader(InitDataHeader)
		if initData == "" {
			initData = c.Query(initDataQuery)
		}

		if initData != "" && cfg.BotToken != "" {
			user, err := ValidateInitData(initData, cfg.BotToken)
			switch {
			case err != nil:
				log.Warn("invalid telegram init data", "path", c.Request.URL.Path, "error", err)
			case !admins[user.ID]:
				log.Warn("telegram user is not admin", "user_id", user.ID)
			default:
				log.Debug("telegram admin authenticated", "user_id", user.ID)
				c.Set("admin", strconv.FormatInt(user.ID, 10))
				c.Next()
				return
			}
		}

		c.Header("WWW-Authenticate", `Basic realm="Raffle Admin"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

func checkBasicAuth(r *http.Request, expectedUser, expectedPassword string) bool {
	if expectedPassword == "" {
		return false
	}

	user, password, ok := r.BasicAuth()
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(expectedUser)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPassword)) == 1
	return userOK && passwordOK
}

// ValidateInitData проверяет подпись и срок initData Telegram Web App и возвращает пользователя.
// initData без auth_date отклоняется
func ValidateInitData(raw, botToken string) (*initdata.User, error) {
	if err := initdata.Validate(raw, botToken, initDataMaxAge); err != nil {
		return nil, fmt.Errorf("failed to validate init data: %w", err)
	}

	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse init data: %w", err)
	}
	if data.User.ID == 0 {
		return nil, errors.New("init data has no user")
	}
	return &data.User, nil
}

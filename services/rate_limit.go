package services

import (
	goContext "context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/shared"
)

// RateLimitService enforces fixed-window limits backed by redis. State
// lives in redis so limits hold across instances; when redis is down
// requests pass through rather than blocking users on an infra outage.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
	Description  string
	IsActive     bool
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

// ==================== CONFIGURATION MANAGEMENT ====================

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		// Authentication endpoints
		"login": {
			EndpointType: "login",
			MaxRequests:  10,
			WindowSize:   15 * time.Minute,
			BlockTime:    30 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		"register": {
			EndpointType: "register",
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			BlockTime:    60 * time.Minute,
			Description:  "Registration rate limit",
			IsActive:     true,
		},
		"refresh": {
			EndpointType: "refresh",
			MaxRequests:  20,
			WindowSize:   15 * time.Minute,
			BlockTime:    5 * time.Minute,
			Description:  "Token refresh rate limit",
			IsActive:     true,
		},

		// Share links. The tight window makes token guessing
		// impractical: 64 hex chars at 60 tries per minute.
		"shared_view": {
			EndpointType: "shared_view",
			MaxRequests:  60,
			WindowSize:   time.Minute,
			BlockTime:    10 * time.Minute,
			Description:  "Shared playback access rate limit per IP",
			IsActive:     true,
		},
		"share_link_create": {
			EndpointType: "share_link_create",
			MaxRequests:  30,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Share link creation rate limit",
			IsActive:     true,
		},

		// Media
		"media_upload": {
			EndpointType: "media_upload",
			MaxRequests:  60,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Step image upload rate limit",
			IsActive:     true,
		},

		// API endpoints
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

// ==================== CORE RATE LIMITING LOGIC ====================

func (svc *RateLimitService) IsAllowed(identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists || !config.IsActive {
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}, nil
	}

	ctx := goContext.Background()
	now := time.Now()

	// Check the block flag first
	blockKey := fmt.Sprintf("ratelimit:block:%s:%s", endpointType, identifier)
	blocked, err := svc.redisSvc.Exists(ctx, blockKey)
	if err != nil {
		return false, nil, err
	}
	if blocked {
		ttl, _ := svc.redisSvc.TTL(ctx, blockKey)
		blockedUntil := now.Add(ttl)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	// Fixed window counter: the key carries the window bucket so a new
	// window starts a fresh counter.
	bucket := now.Unix() / int64(config.WindowSize.Seconds())
	countKey := fmt.Sprintf("ratelimit:%s:%s:%d", endpointType, identifier, bucket)

	count, err := svc.redisSvc.Increment(ctx, countKey)
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		if err := svc.redisSvc.Expire(ctx, countKey, config.WindowSize); err != nil {
			log.WithError(err).WithField("key", countKey).Warn("Failed to set rate limit window expiry")
		}
	}

	resetTime := time.Unix((bucket+1)*int64(config.WindowSize.Seconds()), 0)

	if count > int64(config.MaxRequests) {
		blockedUntil := now.Add(config.BlockTime)
		if err := svc.redisSvc.Set(ctx, blockKey, "1", config.BlockTime); err != nil {
			log.WithError(err).WithField("key", blockKey).Warn("Failed to set rate limit block")
		}

		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetTime: &resetTime,
	}, nil
}

// ==================== MIDDLEWARE FUNCTIONS ====================

// RateLimit creates a rate limiting middleware for specific endpoint types
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.getIdentifier(c, endpointType)

		allowed, info, err := svc.IsAllowed(identifier, endpointType)
		if err != nil {
			log.Printf("Rate limit check error for %s (%s): %v", endpointType, identifier, err)
			// Continue with request on error to avoid blocking users due to system issues
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, endpointType, info)
		}

		return c.Next()
	}
}

// IPRateLimit applies general rate limiting by IP address
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := getClientIP(c)

		allowed, info, err := svc.IsAllowed(ip, "api_general")
		if err != nil {
			log.Printf("IP rate limit check error for %s: %v", ip, err)
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, "api_general", info)
		}

		return c.Next()
	}
}

// ==================== HELPER FUNCTIONS ====================

func (svc *RateLimitService) getIdentifier(c *fiber.Ctx, endpointType string) string {
	switch endpointType {
	case "login", "register":
		// For auth endpoints, use IP + email if available
		email := svc.getEmailFromRequest(c)
		if email != "" {
			return fmt.Sprintf("%s:%s", getClientIP(c), email)
		}
		return getClientIP(c)

	case "share_link_create", "media_upload":
		// Owner actions, keyed on the authenticated user
		userID := c.Locals(shared.UserID)
		if userID != nil {
			if userIDStr, ok := userID.(string); ok && userIDStr != "" {
				return userIDStr
			}
		}
		return getClientIP(c)

	default:
		return getClientIP(c)
	}
}

func (svc *RateLimitService) getEmailFromRequest(c *fiber.Ctx) string {
	var reqBody map[string]interface{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&reqBody); err == nil {
			if email, exists := reqBody["email"]; exists {
				if emailStr, ok := email.(string); ok {
					return emailStr
				}
			}
		}
	}
	return ""
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	if info.BlockedUntil != nil {
		retryAfter := int(time.Until(*info.BlockedUntil).Seconds())
		if retryAfter > 0 {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *dto.RateLimitInfo) error {
	message := svc.getRateLimitMessage(endpointType)

	response := map[string]interface{}{
		"error":   "Rate limit exceeded",
		"message": message,
	}

	if info.BlockedUntil != nil {
		response["blocked_until"] = info.BlockedUntil.Unix()
		response["retry_after"] = int(time.Until(*info.BlockedUntil).Seconds())
	}

	return shared.ResponseJSON(c, http.StatusTooManyRequests, message, response)
}

func (svc *RateLimitService) getRateLimitMessage(endpointType string) string {
	messages := map[string]string{
		"login":             "Too many login attempts. Please try again later.",
		"register":          "Too many registration attempts. Please try again later.",
		"refresh":           "Too many token refresh requests. Please try again later.",
		"shared_view":       "Too many requests. Please slow down.",
		"share_link_create": "Too many share links created. Please try again later.",
		"media_upload":      "Too many uploads. Please try again later.",
		"api_general":       "Too many requests. Please slow down.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

// ==================== UTILITY FUNCTIONS ====================

func getClientIP(c *fiber.Ctx) string {
	// Check for forwarded IP first (for load balancers/proxies)
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if ip != "" {
				return ip
			}
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		return cfIP
	}

	ip, _, err := net.SplitHostPort(c.Context().RemoteAddr().String())
	if err != nil {
		return c.Context().RemoteAddr().String()
	}

	return ip
}

// ==================== PUBLIC METHODS ====================

func (svc *RateLimitService) ResetRateLimit(identifier, endpointType string) error {
	ctx := goContext.Background()

	keys, err := svc.redisSvc.Keys(ctx, fmt.Sprintf("ratelimit:%s:%s:*", endpointType, identifier))
	if err != nil {
		return err
	}
	keys = append(keys, fmt.Sprintf("ratelimit:block:%s:%s", endpointType, identifier))

	return svc.redisSvc.Delete(ctx, keys...)
}

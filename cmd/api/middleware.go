package main

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"

	"github.com/liliang-cn/cinelight/internal/data"
)

// recoverPanic 从panic恢复
func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// 限流
func (app *application) rateLimiter(next http.Handler) http.Handler {
	// 定义一个客户结构体用来存放 限流器和最近一次使用时间
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// 定时一分钟移除所有老的条目
	go func() {
		for {
			time.Sleep(time.Minute)

			// 加锁避免在清理时限流器做检查
			mu.Lock()

			// 遍历客户端，如果过去的三分钟没有使用，将其移除
			for ip, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}

			mu.Unlock()
		}
	}()

	// return 之前的代码只会执行一次
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.limiter.enabled {
			// 从请求中提取客户端的IP地址
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}

			mu.Lock()

			// 检查IP地址是否在map中，如果不在，初始化一个新的limiter 并将该IP地址添加到map中
			if _, found := clients[ip]; !found {
				clients[ip] = &client{limiter: rate.NewLimiter(rate.Limit(app.config.limiter.rps), app.config.limiter.burst)}
			}

			clients[ip].lastSeen = time.Now()

			// 检查当前IP的Allow()方法, 如果不允许，将mutext锁解除并返回429
			if !clients[ip].limiter.Allow() {
				mu.Unlock()
				app.rateLimitExceededResponse(w, r)
				return
			}

			// 在这个中间件下游的所有处理程序都返回之前，mutex不会被解锁
			mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate 认证关卡：校验请求头中的 Token 并把用户身份放进 context
// 没有 Authorization 头的请求以匿名身份继续，由 requireAuthenticatedUser 拦截
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader == "" {
			r = app.contextSetUser(r, data.AnonymousUser)
			next.ServeHTTP(w, r)
			return
		}

		// signin 下发的 scheme 是 "JWT"，同时也接受标准的 "Bearer"
		headerParts := strings.Fields(authorizationHeader)
		if len(headerParts) != 2 || (headerParts[0] != "JWT" && headerParts[0] != "Bearer") {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		claims, err := app.tokens.ValidateToken(headerParts[1])
		if err != nil {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		// Token 里已经带了 id 和 username，不需要再查一次库
		user := &data.User{Username: claims.Username}

		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			user.ID = id
		}

		r = app.contextSetUser(r, user)

		next.ServeHTTP(w, r)
	})
}

// requireAuthenticatedUser 拦截匿名请求
func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := app.contextGetUser(r)

		if user.IsAnonymous() {
			app.authenticationRequiredResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// enableCORS 对配置的可信源放开跨域访问
func (app *application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")

		if origin != "" {
			for i := range app.config.cors.trustedOrigins {
				if origin == app.config.cors.trustedOrigins[i] {
					w.Header().Set("Access-Control-Allow-Origin", origin)

					// 预检请求直接在这里应答
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, PUT, PATCH, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

						w.WriteHeader(http.StatusOK)
						return
					}

					break
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

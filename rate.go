package main

import (
	"net/http"
	"sync"
)

const rateWindowSeconds = 60

type windowLimiter struct {
	mutex        sync.Mutex
	windowEnd    int64
	counts       map[string]int
	perMinuteCap int
}

func newWindowLimiter(perMinuteCap int) *windowLimiter {
	return &windowLimiter{
		windowEnd:    timeNow().Unix() + rateWindowSeconds,
		counts:       make(map[string]int),
		perMinuteCap: perMinuteCap,
	}
}

func (limiter *windowLimiter) allow(bucketKey string) bool {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	currentUnix := timeNow().Unix()
	if currentUnix >= limiter.windowEnd {
		limiter.windowEnd = currentUnix + rateWindowSeconds
		limiter.counts = make(map[string]int)
	}
	if limiter.counts[bucketKey] >= limiter.perMinuteCap {
		return false
	}
	limiter.counts[bucketKey] = limiter.counts[bucketKey] + 1
	return true
}

func rateLimit(limiter *windowLimiter, metrics *serviceMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(httpResponseWriter http.ResponseWriter, httpRequest *http.Request) {
			if !limiter.allow(rateKey(httpRequest.RemoteAddr, httpRequest.Header.Get(headerOrigin))) {
				metrics.observeRejection(rejectionRateLimited)
				httpErrorJSON(httpResponseWriter, http.StatusTooManyRequests, rejectionRateLimited)
				return
			}
			next.ServeHTTP(httpResponseWriter, httpRequest)
		})
	}
}

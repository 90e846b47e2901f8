package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// shareAccess 匿名访问分享笔记的结果计数
var shareAccess = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ecrit",
	Subsystem: "share",
	Name:      "access_total",
	Help:      "Anonymous shared-note access attempts by operation and result.",
}, []string{"op", "result"})

// shareChanges 分享状态变更计数
var shareChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ecrit",
	Subsystem: "share",
	Name:      "changes_total",
	Help:      "Share visibility changes by resulting state.",
}, []string{"state"})

const (
	resultGranted  = "granted"
	resultLocked   = "locked"
	resultDenied   = "denied"
	resultNotFound = "not_found"
	resultError    = "error"
)

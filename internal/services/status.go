package services

import (
	"encoding/json"
	"fmt"
)

// StatusKind classifies why the backend is unreachable.
type StatusKind string

const (
	// KindEmergency means the service was deliberately stopped. Not retryable.
	KindEmergency StatusKind = "emergency"
	// KindMaintenance means the service is paused for maintenance.
	KindMaintenance StatusKind = "maintenance"
	// KindUnavailable covers 503 responses that carry no recognizable status.
	KindUnavailable StatusKind = "unavailable"
	// KindNetwork means the request never reached the backend.
	KindNetwork StatusKind = "network"
)

// ServiceStatus describes an outage in terms suitable for display.
//
// Reason and Timestamp are carried verbatim from the backend payload;
// Title, Message and Suggestion are localized.
type ServiceStatus struct {
	Kind       StatusKind `json:"kind"`
	Retryable  bool       `json:"retryable"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Suggestion string     `json:"suggestion"`
	Reason     string     `json:"reason,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
}

// ServiceDownError wraps a [ServiceStatus] as an error.
type ServiceDownError struct {
	Status *ServiceStatus
}

func (e *ServiceDownError) Error() string {
	if e.Status.Reason != "" {
		return fmt.Sprintf("service unavailable (%s): %s", e.Status.Kind, e.Status.Reason)
	}
	return fmt.Sprintf("service unavailable (%s)", e.Status.Kind)
}

// statusText holds the localized copy for one outage kind.
type statusText struct {
	title      string
	message    string
	suggestion string
}

var statusCopy = map[string]map[StatusKind]statusText{
	"en": {
		KindEmergency: {
			title:      "Service Stopped",
			message:    "The service has been temporarily stopped by the administrator.",
			suggestion: "Please try again later or contact support.",
		},
		KindMaintenance: {
			title:      "Under Maintenance",
			message:    "The service is undergoing scheduled maintenance.",
			suggestion: "Please try again in a few minutes.",
		},
		KindUnavailable: {
			title:      "Service Unavailable",
			message:    "The service is temporarily unavailable.",
			suggestion: "Please try again in a few minutes.",
		},
		KindNetwork: {
			title:      "Connection Failed",
			message:    "Could not reach the service.",
			suggestion: "Check your network connection and try again.",
		},
	},
	"zh": {
		KindEmergency: {
			title:      "服务已停止",
			message:    "服务已被管理员临时停止。",
			suggestion: "请稍后再试或联系支持人员。",
		},
		KindMaintenance: {
			title:      "维护中",
			message:    "服务正在进行计划维护。",
			suggestion: "请几分钟后再试。",
		},
		KindUnavailable: {
			title:      "服务不可用",
			message:    "服务暂时不可用。",
			suggestion: "请几分钟后再试。",
		},
		KindNetwork: {
			title:      "连接失败",
			message:    "无法连接到服务。",
			suggestion: "请检查网络连接后重试。",
		},
	},
}

// unavailablePayload is the body Chainy returns with a 503.
type unavailablePayload struct {
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// newStatus builds a localized [ServiceStatus], falling back to English
// for unknown locales.
func newStatus(kind StatusKind, retryable bool, reason, timestamp, locale string) *ServiceStatus {
	copySet, ok := statusCopy[locale]
	if !ok {
		copySet = statusCopy["en"]
	}
	text := copySet[kind]

	return &ServiceStatus{
		Kind:       kind,
		Retryable:  retryable,
		Title:      text.title,
		Message:    text.message,
		Suggestion: text.suggestion,
		Reason:     reason,
		Timestamp:  timestamp,
	}
}

// ClassifyUnavailable maps a 503 response body to a [ServiceStatus].
//
// A body announcing an emergency stop is terminal; everything else,
// including bodies that do not parse, is treated as a transient outage.
func ClassifyUnavailable(body []byte, locale string) *ServiceStatus {
	var payload unavailablePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return newStatus(KindUnavailable, true, "", "", locale)
	}

	switch payload.Status {
	case "emergency_stop":
		return newStatus(KindEmergency, false, payload.Reason, payload.Timestamp, locale)
	case "paused":
		return newStatus(KindMaintenance, true, payload.Reason, payload.Timestamp, locale)
	default:
		return newStatus(KindUnavailable, true, payload.Reason, payload.Timestamp, locale)
	}
}

// NetworkStatus builds the [ServiceStatus] for a transport failure.
func NetworkStatus(locale string) *ServiceStatus {
	return newStatus(KindNetwork, true, "", "", locale)
}

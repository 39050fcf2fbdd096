package dispatch

import (
	"strings"
)

type Kind int

const (
	KindSuccess Kind = iota
	KindTransientUnavailable
	KindAuthFailure
	KindUnknownFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTransientUnavailable:
		return "transient_unavailable"
	case KindAuthFailure:
		return "auth_failure"
	case KindUnknownFailure:
		return "unknown_failure"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unrecognized values map to
// KindUnknownFailure.
func ParseKind(s string) Kind {
	for _, k := range []Kind{KindSuccess, KindTransientUnavailable, KindAuthFailure, KindUnknownFailure} {
		if k.String() == s {
			return k
		}
	}
	return KindUnknownFailure
}

const (
	WarmingUpMessage = "⚠️ The model is warming up. Please wait a moment and try again. " +
		"This happens when the model hasn't been used recently on the HuggingFace servers." +
		"\n\n**Tip:** Try sending your message again in a few seconds."

	AuthFailureMessage = "❌ Authentication error. Please check your HF_TOKEN in the .env file."

	unknownFailurePrefix = "Error generating response: "
)

// Classify maps the final attempt's error to a Kind and the text shown to the
// user. The substrings come from the provider's error bodies and are matched
// as-is; they are not a stable API.
func Classify(err error) (Kind, string) {
	if err == nil {
		return KindUnknownFailure, unknownFailurePrefix + "no model candidates configured"
	}
	msg := err.Error()

	if strings.Contains(msg, "model_pending_deploy") || strings.Contains(msg, "not ready for inference") {
		return KindTransientUnavailable, WarmingUpMessage
	}

	lower := strings.ToLower(msg)
	if strings.Contains(lower, "authentication") || strings.Contains(lower, "unauthorized") {
		return KindAuthFailure, AuthFailureMessage
	}

	return KindUnknownFailure, unknownFailurePrefix + msg
}

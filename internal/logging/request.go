package logging

import "github.com/sirupsen/logrus"

// RequestFields builds the standard field set attached to every request
// log line: method, path, the resolved agent IRI, and Echo's request ID.
func RequestFields(method, path, agentIRI, requestID string) logrus.Fields {
	return logrus.Fields{
		"method":     method,
		"path":       path,
		"agent":      agentIRI,
		"request_id": requestID,
	}
}

// WithResource adds the internal resource identifier a handler is acting
// on to an existing field set, for the common case of logging a handler
// failure against a specific LDP resource.
func WithResource(fields logrus.Fields, internalID string) logrus.Fields {
	out := make(logrus.Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["resource"] = internalID
	return out
}

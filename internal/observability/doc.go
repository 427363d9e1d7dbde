// Package observability records SkillPulse events as JSON Lines and derives
// usage metrics and failure alerts from them on demand.
package observability

package auth

import "strings"

type StaffPermission string

const (
	PermReports StaffPermission = "reports"
	PermRevenue StaffPermission = "revenue"
)

var apiPermissionMap = map[string]StaffPermission{
	"/api/merchant/reports":                 PermReports,
	"/api/merchant/reports/sales-dashboard": PermRevenue,
	"/api/merchant/revenue":                 PermRevenue,
}

// GetPermissionForAPI returns the staff permission guarding a route. The
// longest matching path prefix wins; a "METHOD /path" key beats a plain key
// of the same length.
func GetPermissionForAPI(path string, method string) *StaffPermission {
	method = strings.ToUpper(strings.TrimSpace(method))

	var bestPath string
	var bestPerm *StaffPermission
	var bestMethodSpecific bool

	for key, perm := range apiPermissionMap {
		keyPath := key
		methodSpecific := false
		if keyMethod, rest, ok := strings.Cut(key, " "); ok {
			keyPath = strings.TrimSpace(rest)
			methodSpecific = true
			if method == "" || method != strings.ToUpper(keyMethod) {
				continue
			}
		}

		if !strings.HasPrefix(path, keyPath) {
			continue
		}

		if bestPerm == nil || len(keyPath) > len(bestPath) || (len(keyPath) == len(bestPath) && methodSpecific && !bestMethodSpecific) {
			bestPath = keyPath
			bestMethodSpecific = methodSpecific
			permCopy := perm
			bestPerm = &permCopy
		}
	}

	return bestPerm
}

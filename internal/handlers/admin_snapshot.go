// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import "net/http"

// SnapshotGenerate regenerates the site's static JSON files.
func (a *Admin) SnapshotGenerate(w http.ResponseWriter, r *http.Request) {
	res := a.Snapshots.Generate(r.Context(), siteFromCtx(r.Context()).ID)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

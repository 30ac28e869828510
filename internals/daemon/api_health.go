// Copyright (c) 2022 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package daemon

import "net/http"

// v1Health reports liveness: the daemon has a listener and a dispatcher.
// There's no dependency to probe (no database, no upstream) so this never
// fails once the process is serving requests at all.
func v1Health(c *Command, r *http.Request) Response {
	return &plainResp{Status: http.StatusOK, OK: "ok", Message: "healthy"}
}

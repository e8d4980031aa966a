// Package api provides the read API of GnosisPayIndexor
// @title GnosisPayIndexor API
// @version 1.0
// @description REST API for Gnosis Pay spending and cashback rewards indexed by GnosisPayIndexor
// @contact.name API Support
// @contact.url https://github.com/goran-ethernal/GnosisPayIndexor
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /api/v1
// @schemes http https
package api

package router

import (
	"net/http"

	"hellodube-gateway/internal/handler"
	"hellodube-gateway/internal/model"
)

// programRoute is declarative route metadata: one entry per endpoint naming
// the roles permitted to hit it. The wiring loop in New applies the single
// role gate uniformly, so no handler re-implements its own check.
type programRoute struct {
	method  string
	pattern string
	roles   []string
	handler http.HandlerFunc
}

func dubeRoutes(h *handler.ProgramHandler) []programRoute {
	return []programRoute{
		{http.MethodGet, "/international/getprojectlist.php", []string{model.RoleDubeAdmin}, h.ProjectList},
		{http.MethodGet, "/international/getsupplierlist.php", []string{model.RoleDubeAdmin, model.RoleDubeViewer}, h.SupplierList},
		{http.MethodGet, "/international/getinvoicelist.php", []string{model.RoleDubeAdmin, model.RoleDubeViewer}, h.InvoiceList},
		{http.MethodPost, "/international/createinvoice.php", []string{model.RoleDubeAdmin}, h.CreateInvoice},
	}
}

func wfpRoutes(h *handler.ProgramHandler) []programRoute {
	return []programRoute{
		{http.MethodGet, "/getbeneficiarylist.php", []string{model.RoleWFPAdmin, model.RoleWFPViewer}, h.BeneficiaryList},
		{http.MethodGet, "/getvoucherlist.php", []string{model.RoleWFPAdmin, model.RoleWFPViewer}, h.VoucherList},
		{http.MethodPost, "/createvoucher.php", []string{model.RoleWFPAdmin}, h.CreateVoucher},
	}
}

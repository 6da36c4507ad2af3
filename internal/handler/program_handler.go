package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"hellodube-gateway/internal/model"
)

// ProgramHandler serves the dube and wfp program-data routes. Records come
// from small in-process fixtures; the upstream systems these represent are
// mocked for documentation purposes.
type ProgramHandler struct{}

func NewProgramHandler() *ProgramHandler {
	return &ProgramHandler{}
}

type project struct {
	ProjectName              string `json:"projectName"`
	CountryCode              string `json:"countryCode"`
	CountryName              string `json:"countryName"`
	CreditDisbursementWallet string `json:"creditDisbursementWallet"`
	EarningWallet            string `json:"earningWallet"`
	SettlementBank           string `json:"settlementBank"`
	SettlementAccount        string `json:"settlementAccount"`
}

type supplier struct {
	Name          string `json:"name"`
	Wallet        string `json:"wallet"`
	WalletBalance string `json:"walletBalance"`
	Mobile        string `json:"mobile"`
	CountryCode   string `json:"countryCode"`
}

type invoice struct {
	InvoiceNumber string `json:"invoiceNumber"`
	SupplierName  string `json:"supplierName"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
}

type subWallet struct {
	WalletName    string `json:"walletName"`
	WalletBalance string `json:"walletBalance"`
	Cycle         string `json:"cycle"`
}

type beneficiary struct {
	MainWallet        string      `json:"mainWallet"`
	BeneficiaryName   string      `json:"beneficiaryName"`
	Mobile            string      `json:"mobile"`
	MainWalletBalance string      `json:"mainWalletBalance"`
	SubWallets        []subWallet `json:"subWallets"`
}

type voucher struct {
	VoucherCode string `json:"voucherCode"`
	Wallet      string `json:"wallet"`
	Amount      string `json:"amount"`
	Cycle       string `json:"cycle"`
	Redeemed    bool   `json:"redeemed"`
}

var projectFixtures = []project{
	{ProjectName: "Standard_ET", CountryCode: "ET", CountryName: "Ethiopia", CreditDisbursementWallet: "1234567890", EarningWallet: "0987654321"},
	{ProjectName: "Standard_KE", CountryCode: "KE", CountryName: "Kenya", CreditDisbursementWallet: "2234567890", EarningWallet: "1987654321", SettlementBank: "KCB", SettlementAccount: "12345678"},
}

var supplierFixtures = []supplier{
	{Name: "hello shop", Wallet: "2244972362", WalletBalance: "0.00", Mobile: "251991152362", CountryCode: "ET"},
	{Name: "green market", Wallet: "2244972400", WalletBalance: "1250.00", Mobile: "254701234567", CountryCode: "KE"},
}

var invoiceFixtures = []invoice{
	{InvoiceNumber: "INV-2031", SupplierName: "hello shop", Amount: "4800.00", Currency: "ETB", Status: "paid"},
	{InvoiceNumber: "INV-2032", SupplierName: "green market", Amount: "310.00", Currency: "KES", Status: "pending"},
}

var beneficiaryFixtures = []beneficiary{
	{
		MainWallet:        "1198916900",
		BeneficiaryName:   "Solomon waleligh",
		Mobile:            "251961201230",
		MainWalletBalance: "600.00",
		SubWallets: []subWallet{
			{WalletName: "Oil", WalletBalance: "100.00", Cycle: "Test Cycle-2"},
			{WalletName: "Cereal", WalletBalance: "100.00", Cycle: "Test Cycle-2"},
		},
	},
}

var voucherFixtures = []voucher{
	{VoucherCode: "VC-88121", Wallet: "1198916900", Amount: "150.00", Cycle: "Test Cycle-2"},
	{VoucherCode: "VC-88122", Wallet: "1198916900", Amount: "150.00", Cycle: "Test Cycle-2", Redeemed: true},
}

func (h *ProgramHandler) ProjectList(w http.ResponseWriter, r *http.Request) {
	countryCode := strings.TrimSpace(r.URL.Query().Get("countryCode"))

	filtered := make([]project, 0, len(projectFixtures))
	for _, p := range projectFixtures {
		if countryCode == "" || p.CountryCode == countryCode {
			filtered = append(filtered, p)
		}
	}

	writeList(w, r, filtered)
}

func (h *ProgramHandler) SupplierList(w http.ResponseWriter, r *http.Request) {
	mobile := strings.TrimSpace(r.URL.Query().Get("mobile"))
	countryCode := strings.TrimSpace(r.URL.Query().Get("countryCode"))

	filtered := make([]supplier, 0, len(supplierFixtures))
	for _, s := range supplierFixtures {
		if mobile != "" && s.Mobile != mobile {
			continue
		}
		if countryCode != "" && s.CountryCode != countryCode {
			continue
		}
		filtered = append(filtered, s)
	}

	writeList(w, r, filtered)
}

func (h *ProgramHandler) InvoiceList(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, invoiceFixtures)
}

func (h *ProgramHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload invoice
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(payload.InvoiceNumber) == "" || strings.TrimSpace(payload.SupplierName) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "invoiceNumber and supplierName are required")
		return
	}

	payload.Status = "pending"
	writeJSON(w, http.StatusCreated, struct {
		Error   bool    `json:"error"`
		Message invoice `json:"message"`
	}{Message: payload})
}

func (h *ProgramHandler) BeneficiaryList(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, beneficiaryFixtures)
}

func (h *ProgramHandler) VoucherList(w http.ResponseWriter, r *http.Request) {
	writeList(w, r, voucherFixtures)
}

func (h *ProgramHandler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload voucher
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(payload.VoucherCode) == "" || strings.TrimSpace(payload.Wallet) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "voucherCode and wallet are required")
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Error   bool    `json:"error"`
		Message voucher `json:"message"`
	}{Message: payload})
}

// writeList emits the legacy list envelope: stringified total plus records
// under "message", truncated by the limit query parameter.
func writeList[T any](w http.ResponseWriter, r *http.Request, records []T) {
	limit := len(records)
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 && parsed < limit {
			limit = parsed
		}
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		TotalCount: strconv.Itoa(len(records)),
		Message:    records[:limit],
	})
}

package orderserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	customersmapper "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/adapters/http/mapper"
	customersports "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
	loyaltymapper "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/adapters/http/mapper"
	loyaltyports "github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	apierrors "github.com/vuhk2k6/web-order-sub000/internal/shared/errors"
)

// MemberAPI exposes loyalty membership lookups.
type MemberAPI struct {
	loyalty loyaltyports.Service
}

func NewMemberAPI(loyalty loyaltyports.Service) MemberAPI {
	return MemberAPI{loyalty: loyalty}
}

// Get /api/member/:customerId
// Fetch the loyalty membership of a customer
func (api *MemberAPI) GetMember(c *gin.Context) {
	account, err := api.loyalty.MemberByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, loyaltymapper.FromAccount(*account))
}

// AddressAPI serves the signed-in customer's address book.
type AddressAPI struct {
	customers customersports.Service
	validate  *validatorv10.Validate
}

func NewAddressAPI(customers customersports.Service) AddressAPI {
	return AddressAPI{customers: customers, validate: newValidator()}
}

// Get /api/delivery-addresses
// List saved delivery addresses; empty for anonymous requests
func (api *AddressAPI) ListAddresses(c *gin.Context) {
	list, err := api.customers.Addresses(c.Request.Context(), CustomerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customersmapper.FromDomainList(list))
}

// Post /api/delivery-addresses
// Save a delivery address for the signed-in customer
func (api *AddressAPI) SaveAddress(c *gin.Context) {
	customerID := CustomerID(c)
	if customerID == "" {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("sign in to save addresses"))
		return
	}
	var payload customersmapper.Address
	if !bindAndValidate(c, &payload, api.validate) {
		return
	}
	saved, err := api.customers.SaveAddress(c.Request.Context(), payload.ToDomain(customerID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customersmapper.FromDomain(*saved))
}

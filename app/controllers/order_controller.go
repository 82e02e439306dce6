package controllers

import (
	"errors"
	"strconv"

	"github.com/shashiranjanraj/kashvi-shop/app/models"
	"github.com/shashiranjanraj/kashvi-shop/app/resources"
	"github.com/shashiranjanraj/kashvi-shop/app/services"
	"github.com/shashiranjanraj/kashvi-shop/pkg/csrf"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ctx"
	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/session"
)

const orderNotFound = "Order not found or unauthorized"

// RouteURLs turns a route name into its path.
type RouteURLs interface {
	URL(name string, params map[string]string) (string, error)
}

// OrderController serves the form-based order admin. Views are answered as
// JSON envelopes; writes redirect with 303 to a named route and leave a
// flash message.
type OrderController struct {
	orders   *services.OrderService
	products *services.ProductService
	routes   RouteURLs
}

func NewOrderController(orders *services.OrderService, products *services.ProductService, routes RouteURLs) *OrderController {
	return &OrderController{orders: orders, products: products, routes: routes}
}

func (oc *OrderController) redirect(c *ctx.Context, route string) {
	path, err := oc.routes.URL(route, nil)
	if err != nil {
		c.Exception(err)
		return
	}
	c.Redirect(path)
}

func deleteIntent(id string) string { return "delete" + id }

// flashes drains the pending session messages.
func flashes(c *ctx.Context) map[string][]string {
	sess := session.FromCtx(c.R)
	out := map[string][]string{}
	for _, kind := range []string{"success", "error"} {
		if msgs := sess.Flashes(kind); len(msgs) > 0 {
			out[kind] = msgs
		}
	}
	return out
}

// GET /order
func (oc *OrderController) Index(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	list, err := oc.orders.List(c.Context(), uid)
	if err != nil {
		fail(c, err, orderNotFound)
		return
	}
	c.Success(map[string]any{"orders": resources.Orders(list), "flash": flashes(c)})
}

// GET /order/new lists what the create form may offer.
func (oc *OrderController) New(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	form, err := oc.formData(c, uid)
	if err != nil {
		fail(c, err, orderNotFound)
		return
	}
	form["flash"] = flashes(c)
	c.Success(form)
}

// POST /order
func (oc *OrderController) Store(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var in services.OrderInput
	if !c.BindForm(&in) {
		return
	}
	// New orders always start out pending.
	in.Status = ""

	if _, err := oc.orders.Create(c.Context(), uid, in); err != nil {
		fail(c, err, productNotFound)
		return
	}
	session.FromCtx(c.R).Flash("success", "Order created.")
	oc.redirect(c, "order.index")
}

// GET /order/{id}
func (oc *OrderController) Show(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	o, ok := oc.find(c, uid)
	if !ok {
		return
	}
	token, err := csrf.Issue(uid, deleteIntent(strconv.FormatUint(uint64(o.ID), 10)))
	if err != nil {
		c.Exception(err)
		return
	}
	dto := resources.NewOrder(*o)
	dto.DeleteToken = token
	c.Success(dto)
}

// GET /order/{id}/edit
func (oc *OrderController) Edit(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	o, ok := oc.find(c, uid)
	if !ok {
		return
	}
	form, err := oc.formData(c, uid)
	if err != nil {
		fail(c, err, orderNotFound)
		return
	}
	form["order"] = resources.NewOrder(*o)
	c.Success(form)
}

// POST /order/{id}/edit
func (oc *OrderController) Update(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(orderNotFound)
		return
	}
	var in services.OrderInput
	if !c.BindForm(&in) {
		return
	}
	if _, err := oc.orders.Update(c.Context(), uid, id, in); err != nil {
		fail(c, err, orderNotFound)
		return
	}
	session.FromCtx(c.R).Flash("success", "Order edited successfully.")
	oc.redirect(c, "order.index")
}

// POST /order/{id} deletes the order when the posted _token matches.
func (oc *OrderController) Destroy(c *ctx.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(orderNotFound)
		return
	}
	if err := csrf.Verify(c.PostForm(csrf.FieldName), uid, deleteIntent(c.Param("id"))); err != nil {
		logger.WithCtx(c.Context()).Info("order: delete with bad token ignored", "order_id", id)
		oc.redirect(c, "order.index")
		return
	}

	err := oc.orders.Delete(c.Context(), uid, id)
	var oos *services.OutOfStockError
	switch {
	case errors.As(err, &oos):
		session.FromCtx(c.R).Flash("error", oos.Error())
		oc.redirect(c, "order.new")
	case err != nil:
		fail(c, err, orderNotFound)
	default:
		oc.redirect(c, "order.index")
	}
}

func (oc *OrderController) find(c *ctx.Context, uid uint) (*models.Order, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.Forbidden(orderNotFound)
		return nil, false
	}
	o, err := oc.orders.Find(c.Context(), uid, id)
	if err != nil {
		fail(c, err, orderNotFound)
		return nil, false
	}
	return o, true
}

func (oc *OrderController) formData(c *ctx.Context, uid uint) (map[string]any, error) {
	products, err := oc.products.List(c.Context(), uid)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"products": resources.Products(products),
		"statuses": models.OrderStatuses,
	}, nil
}

package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "foodgram_http_requests_total"
	MetricNameHTTPRequestDuration  = "foodgram_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "foodgram_http_requests_in_flight"
)

// Business metric names
const (
	MetricNameRecipesWritten        = "foodgram_recipes_written_total"
	MetricNameRecipeMarks           = "foodgram_recipe_marks_total"
	MetricNameSubscriptions         = "foodgram_subscriptions_total"
	MetricNameShoppingListDownloads = "foodgram_shopping_list_downloads_total"
	MetricNameShoppingListMixed     = "foodgram_shopping_list_mixed_units_total"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Business metric help text
const (
	HelpTextRecipesWritten        = "Total number of recipe writes by operation"
	HelpTextRecipeMarks           = "Total number of favorite and shopping cart changes"
	HelpTextSubscriptions         = "Total number of subscription changes"
	HelpTextShoppingListDownloads = "Total number of shopping lists downloaded"
	HelpTextShoppingListMixed     = "Shopping list items summed across different measurement units"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelOperation = "operation"
	LabelKind      = "kind"
	LabelAction    = "action"
)

// Label values
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"

	KindFavorite     = "favorite"
	KindShoppingCart = "shopping_cart"

	ActionAdd    = "add"
	ActionRemove = "remove"
)

// unmatchedPath labels requests that hit no route, keeping label cardinality bounded
const unmatchedPath = "unmatched"

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

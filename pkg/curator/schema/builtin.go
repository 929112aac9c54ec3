package schema

import (
	"github.com/tripfeed/curator/pkg/curator/coerce"
	"github.com/tripfeed/curator/pkg/curator/envelope"
)

// Builtin returns a registry populated with every event type the intake
// stage currently produces. Deployments extend it with overlay files; the
// returned registry is ready to hand to a classifier as-is.
func Builtin() *Registry {
	r := NewRegistry()
	for _, def := range builtinDefinitions() {
		r.MustRegister(def)
	}
	return r
}

func builtinDefinitions() []*Definition {
	return []*Definition{
		{
			Type:     "reserva_creada",
			Required: []string{"reservaId", "vueloId", "precio", "userId"},
			Optional: []string{"airlineCode", "origin", "destination", "flightDate", "searchId"},
			Fields: map[string][]coerce.Kind{
				"reservaId":   {coerce.String},
				"vueloId":     {coerce.String},
				"precio":      {coerce.Int, coerce.Float},
				"userId":      {coerce.String},
				"airlineCode": {coerce.String},
				"origin":      {coerce.String},
				"destination": {coerce.String},
				"flightDate":  {coerce.String},
				"searchId":    {coerce.String},
			},
			Constraints: map[string]Constraint{
				"precio":    Positive(),
				"reservaId": NonEmpty(),
				"vueloId":   NonEmpty(),
				"userId":    NonEmpty(),
			},
			TimestampAliases: []string{envelope.FieldTimestamp},
		},
		{
			Type:     "pago_aprobado",
			Required: []string{"paymentId", "reservaId", "userId", "amount"},
			Fields: map[string][]coerce.Kind{
				"paymentId": {coerce.String},
				"reservaId": {coerce.String},
				"userId":    {coerce.String},
				"amount":    {coerce.Int, coerce.Float},
			},
			Constraints: map[string]Constraint{
				"amount": Positive(),
			},
		},
		{
			Type:     "pago_rechazado",
			Required: []string{"pagoId", "monto", "razon"},
			Optional: []string{"metodoPago", "intentos", "userId", "reservaId"},
			Fields: map[string][]coerce.Kind{
				"pagoId":     {coerce.String},
				"monto":      {coerce.Int, coerce.Float},
				"razon":      {coerce.String},
				"metodoPago": {coerce.String},
				"intentos":   {coerce.Int},
				"userId":     {coerce.String},
				"reservaId":  {coerce.String},
			},
			Constraints: map[string]Constraint{
				"monto":    Positive(),
				"razon":    NonEmpty(),
				"intentos": AtLeast(1),
			},
			TimestampAliases: []string{envelope.FieldTimestamp},
		},
		{
			Type:     "reserva_cancelada",
			Required: []string{"reservaId", "userId", "motivo"},
			Fields: map[string][]coerce.Kind{
				"reservaId": {coerce.String},
				"userId":    {coerce.String},
				"motivo":    {coerce.String},
			},
			Constraints: map[string]Constraint{
				"reservaId": NonEmpty(),
				"userId":    NonEmpty(),
				"motivo":    NonEmpty(),
			},
		},
		{
			Type:     "vuelo_cancelado",
			Required: []string{"vueloId", "motivo"},
			Optional: []string{"fechaCancelacion", "reembolso"},
			Fields: map[string][]coerce.Kind{
				"vueloId":          {coerce.String},
				"motivo":           {coerce.String},
				"fechaCancelacion": {coerce.String},
				"reembolso":        {coerce.Bool},
			},
			Constraints: map[string]Constraint{
				"vueloId": NonEmpty(),
				"motivo":  NonEmpty(),
			},
			TimestampAliases: []string{envelope.FieldTimestamp},
		},
		{
			Type:     "usuario_registrado",
			Required: []string{"userId", "canal"},
			Optional: []string{"email", "fechaRegistro", "pais"},
			Fields: map[string][]coerce.Kind{
				"userId":        {coerce.String},
				"canal":         {coerce.String},
				"email":         {coerce.String},
				"fechaRegistro": {coerce.String},
				"pais":          {coerce.String},
			},
			Constraints: map[string]Constraint{
				"userId": NonEmpty(),
				"canal":  OneOf("web", "mobile", "api"),
				"email":  Email(),
			},
			TimestampAliases: []string{envelope.FieldTimestamp},
		},
		{
			Type:     "search_metric",
			Required: []string{"flightsFrom", "flightsTo", "dateFrom", "dateTo", "resultsCount", "userId"},
			Fields: map[string][]coerce.Kind{
				"flightsFrom":  {coerce.String},
				"flightsTo":    {coerce.String},
				"dateFrom":     {coerce.String},
				"dateTo":       {coerce.String},
				"resultsCount": {coerce.Int},
				"userId":       {coerce.String},
			},
			Constraints: map[string]Constraint{
				"flightsFrom":  NonEmpty(),
				"flightsTo":    NonEmpty(),
				"dateFrom":     ISODate(),
				"dateTo":       ISODate(),
				"resultsCount": NonNegative(),
				"userId":       NonEmpty(),
			},
			TimestampAliases: []string{"timestamp", envelope.FieldTimestamp},
		},
		{
			Type: "catalogo",
			Required: []string{
				"id", "id_vuelo", "aerolinea", "origen", "destino", "precio",
				"moneda", "despegue", "aterrizaje_local", "estado_vuelo",
				"capacidadAvion", "tipoAvion",
			},
			Fields: map[string][]coerce.Kind{
				"id":               {coerce.Int},
				"id_vuelo":         {coerce.String},
				"aerolinea":        {coerce.String},
				"origen":           {coerce.String},
				"destino":          {coerce.String},
				"precio":           {coerce.Int, coerce.Float},
				"moneda":           {coerce.String},
				"despegue":         {coerce.String},
				"aterrizaje_local": {coerce.String},
				"estado_vuelo":     {coerce.String},
				"capacidadAvion":   {coerce.Int},
				"tipoAvion":        {coerce.String},
			},
			Constraints: map[string]Constraint{
				"id":               Positive(),
				"precio":           Positive(),
				"moneda":           CurrencyCode(),
				"despegue":         NonEmpty(),
				"aterrizaje_local": NonEmpty(),
				"capacidadAvion":   Positive(),
			},
			TimestampAliases: []string{"despegue", envelope.FieldTimestamp},
			Strategy:         StrategyFunc(normalizeCatalog),
		},
		{
			Type:     "flights.flight.created",
			Required: []string{"flightId", "flightNumber", "origin", "destination", "aircraftModel", "departureAt", "arrivalAt", "status", "price", "currency"},
			Fields: map[string][]coerce.Kind{
				"flightId":      {coerce.String},
				"flightNumber":  {coerce.String},
				"origin":        {coerce.String},
				"destination":   {coerce.String},
				"aircraftModel": {coerce.String},
				"departureAt":   {coerce.String},
				"arrivalAt":     {coerce.String},
				"status":        {coerce.String},
				"price":         {coerce.Int, coerce.Float},
				"currency":      {coerce.String},
			},
			Constraints: map[string]Constraint{
				"flightId": NonEmpty(),
				"price":    Positive(),
				"currency": CurrencyCode(),
			},
			TimestampAliases: []string{"departureAt"},
			Strategy:         StrategyFunc(normalizeFlightCreated),
		},
		{
			Type:     "users.user.created",
			Required: []string{"userId", "nationalityOrOrigin", "roles", "createdAt"},
			Fields: map[string][]coerce.Kind{
				"userId":              {coerce.String},
				"nationalityOrOrigin": {coerce.String},
				"roles":               {coerce.StringList},
				"createdAt":           {coerce.String},
			},
			Constraints: map[string]Constraint{
				"userId": NonEmpty(),
			},
			TimestampAliases: []string{"createdAt"},
			Strategy:         StrategyFunc(normalizeUserCreated),
		},
	}
}

// normalizeCatalog rewrites the catalog event's ambiguous representations:
// departure/arrival timestamps, currency code, operational status, and
// aircraft type, plus the departure/arrival ordering sanity check.
func normalizeCatalog(env *envelope.Envelope, res *envelope.Result) {
	normalizeTimestampField(env, res, "despegue")
	normalizeTimestampField(env, res, "aterrizaje_local")
	normalizeCurrencyField(env, res, "moneda")
	normalizeStatusField(env, res, "estado_vuelo")
	normalizeAircraftField(env, res, "tipoAvion")
	warnIfOutOfOrder(env, res, "despegue", "aterrizaje_local")
}

// normalizeFlightCreated applies the same rewrites to the flight catalog's
// upstream producer format.
func normalizeFlightCreated(env *envelope.Envelope, res *envelope.Result) {
	normalizeTimestampField(env, res, "departureAt")
	normalizeTimestampField(env, res, "arrivalAt")
	normalizeCurrencyField(env, res, "currency")
	normalizeStatusField(env, res, "status")
	warnIfOutOfOrder(env, res, "departureAt", "arrivalAt")
}

// normalizeUserCreated canonicalizes the registration timestamp and
// homogenizes the role list.
func normalizeUserCreated(env *envelope.Envelope, res *envelope.Result) {
	normalizeTimestampField(env, res, "createdAt")
	if v, ok := env.Get("roles"); ok {
		if roles, ok := coerce.Value(v, coerce.StringList); ok {
			env.Set("roles", roles)
		}
	}
}

// Package inject provides a Guice-compatible dependency-injection container
// for Go.
//
// # Overview
//
// The injector manages the instantiation and lifecycle of your application's
// object graph. It supports instance, linked, provider and constructor
// bindings, named qualifiers, singleton and custom scopes, just-in-time
// bindings for concrete types, child injectors, module overrides and
// provisioning interceptors.
//
// It mirrors the public API of Google Guice as closely as Go's type system
// allows. Because Go has no parameter annotations, constructor parameters
// always resolve by bare type; qualifiers apply to fields (via struct tags),
// setters and explicit keys.
//
// # Injector Lifecycle
//
//  1. Declare modules: small values implementing Module
//  2. Build: in, err := inject.New(inject.Production, modules...)
//     (every configuration problem is reported at once)
//  3. Resolve roots: svc, err := inject.Get[Service](in)
//  4. Optionally fork: child, err := in.Child(requestModule)
//
// # Keys
//
//	// Guice: Key.get(Service.class)
//	inject.Of[Service]()
//
//	// Guice: Key.get(DataSource.class, Names.named("audit"))
//	inject.Named[DataSource]("audit")
//
// # Bindings
//
//	inject.ModuleFunc(func(b *inject.Binder) {
//	    // Pre-built value
//	    // Guice: bind(Config.class).toInstance(cfg)
//	    b.Bind(inject.Of[*Config]()).ToInstance(cfg)
//
//	    // Linked: alias to another key
//	    // Guice: bind(Service.class).to(ServiceImpl.class)
//	    b.Bind(inject.Of[Service]()).To(inject.Of[*ServiceImpl]())
//
//	    // Provider: factory with injected parameters, result used as-is
//	    // Guice: bind(Conn.class).toProvider(ConnProvider.class)
//	    b.Bind(inject.Of[*Conn]()).ToProvider(func(cfg *Config) (*Conn, error) {
//	        return dial(cfg.Addr)
//	    })
//
//	    // Constructor: built, then field/setter injected
//	    // Guice: bind(Server.class).toConstructor(ctor).in(Singleton.class)
//	    b.Bind(inject.Of[*Server]()).ToConstructor(NewServer).AsSingleton()
//	})
//
// # Member Injection
//
// Constructor-target instances receive field and setter injection after the
// constructor returns:
//
//	type Server struct {
//	    DB    *Database `inject:""`
//	    Cache *Cache    `inject:"name=hot"`
//	    Audit *Audit    `inject:"optional"`
//	}
//
//	// Guice: @Inject void setClock(Clock c)
//	func (s *Server) InjectClock(c Clock) { s.clock = c }
//
// Because members are injected into an already-constructed instance, cycles
// that pass through at least one field or setter edge are legal; cycles made
// only of constructor and provider parameters fail with a
// CircularDependencyError at build time.
//
// # Scopes
//
//	// Guice: .in(Singleton.class)
//	b.Bind(inject.Of[*Pool]()).ToSelf().AsSingleton()
//
//	// Guice: bindScope(BatchScoped.class, batchScope)
//	b.BindScope("batch", batchScope)
//	b.Bind(inject.Of[*Tx]()).ToProvider(newTx).In("batch")
//
// Singletons are memoized per injector: a child injector caches its own
// singletons and shares its parent's.
//
// # Stages
//
//	// Guice: Guice.createInjector(Stage.PRODUCTION, modules)
//	in, err := inject.New(inject.Production, modules...)
//
// Both stages validate the whole graph at build time; Production additionally
// constructs every explicit singleton eagerly.
//
// # Overrides
//
//	// Guice: Modules.override(prod).with(testDoubles)
//	in, err := inject.New(inject.Development,
//	    inject.Override(prodModule).With(fakeDatabaseModule))
//
// # Interceptors
//
//	// Guice AOP analogue: decorate fresh instances as they are provisioned
//	b.BindInterceptor(inject.MatchType[Service](), inject.InterceptorFunc(
//	    func(key inject.Key, v any) (any, error) {
//	        return &tracingService{inner: v.(Service)}, nil
//	    }))
package inject

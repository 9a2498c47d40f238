package flows

import "context"

// Service is the centralized flow runner built once by the root manager.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.Call != nil
}

func (s Service) Initialize(ctx context.Context) InitializeResult {
	return RunInitialize(ctx, s.deps.Initialize)
}

func (s Service) CurrentIdentity(ctx context.Context) IdentityResult {
	return RunCurrentIdentity(ctx, s.deps.Initialize)
}

func (s Service) Login(ctx context.Context, email, password string) LoginResult {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Signup(ctx context.Context, email, password string, metadata map[string]any) SignupResult {
	return RunSignup(ctx, email, password, metadata, s.deps.Signup)
}

func (s Service) Logout(ctx context.Context) LogoutResult {
	return RunLogout(ctx, s.deps.Logout)
}

func (s Service) Refresh(ctx context.Context) RefreshResult {
	return RunRefresh(ctx, s.deps.Refresh)
}

func (s Service) RequestPasswordReset(ctx context.Context, email string) PasswordResult {
	return RunPasswordReset(ctx, email, s.deps.Password)
}

func (s Service) UpdatePassword(ctx context.Context, newPassword string) PasswordResult {
	return RunPasswordUpdate(ctx, newPassword, s.deps.Password)
}

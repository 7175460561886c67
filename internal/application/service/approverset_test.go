package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
)

type mockDirectory struct {
	resolveRoleFunc    func(ctx context.Context, roleTag, companyID string) ([]string, error)
	resolveManagerFunc func(ctx context.Context, userID string) (string, error)
}

func (m *mockDirectory) ResolveRole(ctx context.Context, roleTag, companyID string) ([]string, error) {
	if m.resolveRoleFunc != nil {
		return m.resolveRoleFunc(ctx, roleTag, companyID)
	}
	return nil, nil
}

func (m *mockDirectory) ResolveManager(ctx context.Context, userID string) (string, error) {
	if m.resolveManagerFunc != nil {
		return m.resolveManagerFunc(ctx, userID)
	}
	return "", nil
}

func TestApproverSetBuilder_Build(t *testing.T) {
	directory := &mockDirectory{
		resolveRoleFunc: func(ctx context.Context, roleTag, companyID string) ([]string, error) {
			if roleTag == "finance" {
				return []string{"fin1", "fin2"}, nil
			}
			return nil, nil
		},
		resolveManagerFunc: func(ctx context.Context, userID string) (string, error) {
			return "mgr1", nil
		},
	}

	tests := []struct {
		name  string
		specs []entity.ApproverSpec
		want  []string
	}{
		{
			name: "user entries in order",
			specs: []entity.ApproverSpec{
				{Kind: entity.ApproverUser, UserID: "u1"},
				{Kind: entity.ApproverUser, UserID: "u2"},
			},
			want: []string{"u1", "u2"},
		},
		{
			name: "role expands in directory order",
			specs: []entity.ApproverSpec{
				{Kind: entity.ApproverRole, RoleTag: "finance"},
			},
			want: []string{"fin1", "fin2"},
		},
		{
			name: "manager resolves from submitter",
			specs: []entity.ApproverSpec{
				{Kind: entity.ApproverManager},
				{Kind: entity.ApproverUser, UserID: "u1"},
			},
			want: []string{"mgr1", "u1"},
		},
		{
			name: "duplicates keep first occurrence",
			specs: []entity.ApproverSpec{
				{Kind: entity.ApproverUser, UserID: "fin2"},
				{Kind: entity.ApproverRole, RoleTag: "finance"},
				{Kind: entity.ApproverManager},
				{Kind: entity.ApproverUser, UserID: "mgr1"},
			},
			want: []string{"fin2", "fin1", "mgr1"},
		},
	}

	builder := NewApproverSetBuilder(directory)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := builder.Build(context.Background(), tt.specs, "submitter", "acme")
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApproverSetBuilder_NoManagerContributesNothing(t *testing.T) {
	directory := &mockDirectory{
		resolveManagerFunc: func(ctx context.Context, userID string) (string, error) {
			return "", nil
		},
	}
	builder := NewApproverSetBuilder(directory)

	got, err := builder.Build(context.Background(), []entity.ApproverSpec{
		{Kind: entity.ApproverManager},
		{Kind: entity.ApproverUser, UserID: "u1"},
	}, "orphan", "acme")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"u1"}) {
		t.Errorf("Build() = %v, want [u1]", got)
	}
}

func TestApproverSetBuilder_EmptyResultIsError(t *testing.T) {
	directory := &mockDirectory{
		resolveManagerFunc: func(ctx context.Context, userID string) (string, error) {
			return "", nil
		},
	}
	builder := NewApproverSetBuilder(directory)

	_, err := builder.Build(context.Background(), []entity.ApproverSpec{
		{Kind: entity.ApproverManager},
		{Kind: entity.ApproverRole, RoleTag: "empty-role"},
	}, "orphan", "acme")
	if !errors.Is(err, ErrNoApproversResolved) {
		t.Errorf("Build() error = %v, want ErrNoApproversResolved", err)
	}
}

func TestApproverSetBuilder_DirectoryErrorPropagates(t *testing.T) {
	wantErr := errors.New("directory unavailable")
	directory := &mockDirectory{
		resolveRoleFunc: func(ctx context.Context, roleTag, companyID string) ([]string, error) {
			return nil, wantErr
		},
	}
	builder := NewApproverSetBuilder(directory)

	_, err := builder.Build(context.Background(), []entity.ApproverSpec{
		{Kind: entity.ApproverRole, RoleTag: "finance"},
	}, "submitter", "acme")
	if !errors.Is(err, wantErr) {
		t.Errorf("Build() error = %v, want wrapped directory error", err)
	}
}

func TestApproverSetBuilder_UnknownKind(t *testing.T) {
	builder := NewApproverSetBuilder(&mockDirectory{})

	_, err := builder.Build(context.Background(), []entity.ApproverSpec{
		{Kind: entity.ApproverKind("GROUP")},
	}, "submitter", "acme")
	if err == nil {
		t.Error("Build() with unknown spec kind should fail")
	}
}

package kernel

// UserID identifies a user account.
type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// EnterpriseID identifies a tenant organization.
type EnterpriseID string

func NewEnterpriseID(id string) EnterpriseID { return EnterpriseID(id) }
func (e EnterpriseID) String() string        { return string(e) }
func (e EnterpriseID) IsEmpty() bool         { return string(e) == "" }

// MembershipID identifies a (user, enterprise) membership row.
type MembershipID string

func NewMembershipID(id string) MembershipID { return MembershipID(id) }
func (m MembershipID) String() string        { return string(m) }
func (m MembershipID) IsEmpty() bool         { return string(m) == "" }

package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
	"github.com/talkincode/toughstore/pkg/common"
)

// membershipTerm is one membership period granted on join and renew
const membershipTerm = 365 * 24 * time.Hour

type memberAddForm struct {
	CardNo   string `json:"card_no" validate:"omitempty,max=50"`
	Name     string `json:"name" validate:"required,max=50"`
	Phone    string `json:"phone" validate:"required,max=20"`
	JoinDate string `json:"join_date"`
}

func addMember(c echo.Context) error {
	form := new(memberAddForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	db := GetDB(c)
	var count int64
	db.Model(&domain.Member{}).Where("phone = ?", form.Phone).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "phone already registered")
	}
	cardNo := form.CardNo
	if cardNo == "" {
		cardNo = common.GenerateDocNo("M")
	} else {
		db.Model(&domain.Member{}).Where("card_no = ?", cardNo).Count(&count)
		if count > 0 {
			return fail(c, http.StatusBadRequest, "card number already registered")
		}
	}
	joinDate := common.Today()
	if form.JoinDate != "" {
		parsed, err := common.ParseDate(form.JoinDate)
		if err != nil {
			return fail(c, http.StatusBadRequest, "invalid join_date")
		}
		joinDate = parsed
	}
	member := domain.Member{
		CardNo:     cardNo,
		Name:       form.Name,
		Phone:      form.Phone,
		JoinDate:   joinDate,
		ExpireDate: joinDate.Add(membershipTerm),
		Status:     common.ENABLED,
	}
	if err := db.Create(&member).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "member_add", fmt.Sprintf("registered member %s card %s", member.Name, member.CardNo))
	return okMessage(c, "member created", member)
}

func listMembers(c echo.Context) error {
	page, limit := parsePagination(c)
	query := GetDB(c).Model(&domain.Member{})
	query = keywordFilter(query, c.QueryParam("keyword"), "name", "card_no", "phone")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	var members []domain.Member
	err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&members).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return paged(c, members, total)
}

func updateMember(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid member id")
	}
	db := GetDB(c)
	var member domain.Member
	if err := db.Where("id = ?", id).First(&member).Error; err != nil {
		return fail(c, http.StatusNotFound, "member not found")
	}
	body := map[string]interface{}{}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	values := map[string]interface{}{}
	for _, field := range []string{"name", "phone", "status", "level"} {
		if v, present := body[field]; present {
			values[field] = v
		}
	}
	if len(values) == 0 {
		return fail(c, http.StatusBadRequest, "no updatable fields in body")
	}
	if phone, present := values["phone"]; present {
		var count int64
		db.Model(&domain.Member{}).
			Where("phone = ? and id <> ?", phone, member.ID).Count(&count)
		if count > 0 {
			return fail(c, http.StatusBadRequest, "phone already registered")
		}
	}
	if err := db.Model(&member).Updates(values).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "member_update", fmt.Sprintf("updated member %s", member.CardNo))
	return okMessage(c, "member updated", nil)
}

// searchMember is the checkout lookup by card number or phone. An expired
// card found here is flipped to disabled before it is returned, so stale
// rows never grant a discount.
func searchMember(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		keyword = strings.TrimSpace(c.QueryParam("card_no"))
	}
	if keyword == "" {
		keyword = strings.TrimSpace(c.QueryParam("phone"))
	}
	if keyword == "" {
		return fail(c, http.StatusBadRequest, "card_no, phone or keyword is required")
	}
	db := GetDB(c)
	var member domain.Member
	err := db.Where("card_no = ? OR phone = ?", keyword, keyword).First(&member).Error
	if err != nil {
		return fail(c, http.StatusNotFound, "member not found")
	}
	if member.Status == common.ENABLED && member.Expired(common.Today()) {
		db.Model(&member).Update("status", common.DISABLED)
		member.Status = common.DISABLED
	}
	return ok(c, member)
}

// renewMember extends the card one term: from today when the card already
// expired, from the current expire date otherwise. Renewal reactivates
// a disabled card.
func renewMember(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid member id")
	}
	db := GetDB(c)
	var member domain.Member
	if err := db.Where("id = ?", id).First(&member).Error; err != nil {
		return fail(c, http.StatusNotFound, "member not found")
	}
	base := member.ExpireDate
	if member.Expired(common.Today()) {
		base = common.Today()
	}
	newExpire := base.Add(membershipTerm)
	err = db.Model(&member).Updates(map[string]interface{}{
		"expire_date": newExpire,
		"status":      common.ENABLED,
	}).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	member.ExpireDate = newExpire
	member.Status = common.ENABLED
	addOprLog(c, "member_renew", fmt.Sprintf("renewed member %s until %s",
		member.CardNo, newExpire.Format("2006-01-02")))
	return okMessage(c, "member renewed", member)
}

func registerMemberRoutes() {
	webserver.ApiPOST("/members", addMember)
	webserver.ApiGET("/members", listMembers)
	webserver.ApiPUT("/members/:id", updateMember)
	webserver.ApiGET("/members/search", searchMember)
	webserver.ApiPOST("/members/renew/:id", renewMember)
}

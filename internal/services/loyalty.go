package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/models"
)

// Loyalty business errors, mapped to HTTP codes by the handlers.
var (
	ErrEmptySale          = errors.New("sale has no items")
	ErrInvalidQuantity    = errors.New("item quantity must be positive")
	ErrUnknownProduct     = errors.New("unknown product for this store")
	ErrNoLoyaltyCard      = errors.New("customer has no loyalty card for this store")
	ErrRewardUnavailable  = errors.New("reward is not available")
	ErrInsufficientPoints = errors.New("not enough points")
)

// LoyaltyService records sales and reward redemptions. Points and visit
// counters on the CustomerStoreLink are mutated here and nowhere else.
type LoyaltyService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewLoyaltyService(db *gorm.DB) *LoyaltyService {
	return &LoyaltyService{DB: db, Now: time.Now}
}

type SaleItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type SaleInput struct {
	CustomerID *uint      `json:"customer_id"`
	Items      []SaleItem `json:"items"`
	Timestamp  *time.Time `json:"timestamp"`
}

// RecordSale creates the transaction with its line items, prices taken from
// the catalog at sale time, and credits points/visits on the customer's card
// in the same DB transaction.
func (s *LoyaltyService) RecordSale(store models.Store, in SaleInput) (*models.Transaction, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptySale
	}
	ts := s.Now()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}

	ids := make([]uint, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := s.DB.Where("store_id = ? AND id IN ?", store.ID, ids).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	tx := models.Transaction{StoreID: store.ID, CustomerID: in.CustomerID, Timestamp: ts}
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownProduct, it.ProductID)
		}
		tx.Items = append(tx.Items, models.TransactionItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			UnitPrice: p.SalePrice,
		})
		tx.Total += float64(it.Quantity) * p.SalePrice
	}
	// Zello rule: 1 point per currency unit spent, scaled by the store's
	// rate, rounded down.
	tx.PointsAwarded = int(math.Floor(tx.Total * store.PointsRate))

	err := s.DB.Transaction(func(dbtx *gorm.DB) error {
		if in.CustomerID != nil {
			var link models.CustomerStoreLink
			if err := dbtx.Where("customer_id = ? AND store_id = ?", *in.CustomerID, store.ID).
				First(&link).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNoLoyaltyCard
				}
				return err
			}
			updates := map[string]any{
				"points":        gorm.Expr("points + ?", tx.PointsAwarded),
				"visits":        gorm.Expr("visits + 1"),
				"last_visit_at": ts,
			}
			if err := dbtx.Model(&link).Updates(updates).Error; err != nil {
				return err
			}
		}
		return dbtx.Create(&tx).Error
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Redeem spends points on a reward. The points check and deduction happen in
// one DB transaction so two concurrent redemptions cannot both pass.
func (s *LoyaltyService) Redeem(store models.Store, link models.CustomerStoreLink, rewardID uint) (*models.Redemption, error) {
	var reward models.Reward
	if err := s.DB.Where("store_id = ? AND id = ? AND active = ?", store.ID, rewardID, true).
		First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardUnavailable
		}
		return nil, err
	}

	redemption := models.Redemption{
		LinkID:      link.ID,
		RewardID:    reward.ID,
		PointsSpent: reward.PointsCost,
		RedeemedAt:  s.Now(),
	}
	err := s.DB.Transaction(func(dbtx *gorm.DB) error {
		var fresh models.CustomerStoreLink
		if err := dbtx.First(&fresh, link.ID).Error; err != nil {
			return err
		}
		if fresh.Points < reward.PointsCost {
			return ErrInsufficientPoints
		}
		if err := dbtx.Model(&fresh).
			Update("points", gorm.Expr("points - ?", reward.PointsCost)).Error; err != nil {
			return err
		}
		return dbtx.Create(&redemption).Error
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// FindLinkByToken resolves a loyalty card token to its link, used by the
// customer portal.
func (s *LoyaltyService) FindLinkByToken(token string) (*models.CustomerStoreLink, error) {
	var link models.CustomerStoreLink
	if err := s.DB.Preload("Customer").Preload("Store").
		Where("card_token = ?", token).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

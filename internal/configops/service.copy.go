package configops

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/siddharth-2510/cofman/internal/common"
	"github.com/siddharth-2510/cofman/internal/configtree"
	"github.com/siddharth-2510/cofman/internal/logger"
)

// CopyService sao chép cấu hình giữa các LOB: từng element, cả domain,
// cả domain name hoặc nguyên một LOB. Dùng khi nhân bản baseline "default"
// sang một LOB mới hoặc đồng bộ một phần cây giữa hai LOB.
type CopyService struct {
	engine *configtree.Engine
	log    *logrus.Logger
}

// NewCopyService tạo service trên engine đã có
func NewCopyService(engine *configtree.Engine) *CopyService {
	return &CopyService{
		engine: engine,
		log:    logger.GetTransformLogger(),
	}
}

// CopyElement sao chép một element từ domain của fromLob sang cùng domain của toLob.
// Element được merge vào meta đích với tên chống trùng; file của các môi trường
// cụ thể (uat/demo/prod) được copy nếu tồn tại ở nguồn. Domain đích chưa có
// sẽ được tạo mới.
//
// Returns:
//   - string: tên element trong meta đích (có thể mang hậu tố _n)
//   - error: NotFound nếu domain nguồn hoặc element nguồn không tồn tại
func (s *CopyService) CopyElement(fromLob, toLob, domainName, domainType, elementName string) (string, error) {
	store := s.engine.Store()
	src := s.engine.Path().WithLob(fromLob).WithDomain(domainName, domainType)

	srcMeta, err := store.ReadMeta(src.MetaPath())
	if err != nil {
		return "", err
	}
	srcEl := srcMeta.FindElement(elementName)
	if srcEl == nil {
		return "", common.NewNotFoundError("Element not found: " + elementName)
	}

	unlock := s.engine.LockDomain(toLob, domainName, domainType)
	defer unlock()

	dst := s.engine.Path().WithLob(toLob).WithDomain(domainName, domainType)
	dstMeta, err := s.readOrCreateMeta(dst, domainName, domainType)
	if err != nil {
		return "", err
	}

	newName := uniqueNameInMeta(dstMeta, elementName)
	for _, env := range configtree.ConcreteEnvs {
		srcFile := src.WithElement(elementName).WithEnv(env).EnvFile()
		if !store.FileExists(srcFile) {
			continue
		}
		if err := store.CopyFile(srcFile, dst.WithElement(newName).WithEnv(env).EnvFile()); err != nil {
			return "", err
		}
	}

	dstMeta.AddElement(configtree.MetaElement{Name: newName, Pattern: srcEl.Pattern, Group: srcEl.Group})
	if err := store.WriteMeta(dst.MetaPath(), dstMeta); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"fromLob": fromLob, "toLob": toLob,
		"domainName": domainName, "domainType": domainType,
		"element": elementName, "as": newName,
	}).Info("🌲 [COPY] Đã sao chép element")
	return newName, nil
}

// CopyElements sao chép một danh sách element; dừng ở lỗi đầu tiên.
//
// Returns:
//   - []string: tên đích của các element đã copy được (theo thứ tự input)
//   - error: lỗi của element đầu tiên thất bại
func (s *CopyService) CopyElements(fromLob, toLob, domainName, domainType string, elementNames []string) ([]string, error) {
	copied := make([]string, 0, len(elementNames))
	for _, name := range elementNames {
		newName, err := s.CopyElement(fromLob, toLob, domainName, domainType, name)
		if err != nil {
			return copied, err
		}
		copied = append(copied, newName)
	}
	return copied, nil
}

// CopyDomainType sao chép nguyên một domain (meta + mọi element, mọi env)
// sang LOB đích, ghi đè domain đích nếu đã tồn tại.
func (s *CopyService) CopyDomainType(fromLob, toLob, domainName, domainType string) error {
	store := s.engine.Store()
	srcDir := s.engine.Path().WithLob(fromLob).WithDomain(domainName, domainType).DomainTypeDir()
	if !store.DirectoryExists(srcDir) {
		return common.NewNotFoundError(fmt.Sprintf("Config not found: %s/%s/%s", fromLob, domainName, domainType))
	}

	unlock := s.engine.LockDomain(toLob, domainName, domainType)
	defer unlock()

	dstDir := s.engine.Path().WithLob(toLob).WithDomain(domainName, domainType).DomainTypeDir()
	if store.DirectoryExists(dstDir) {
		if err := store.DeleteDirectory(dstDir); err != nil {
			return err
		}
	}
	return store.CopyDirectory(srcDir, dstDir)
}

// CopyDomainName sao chép mọi domain type dưới một domain name sang LOB đích
// (ghi đè từng domain type đích)
func (s *CopyService) CopyDomainName(fromLob, toLob, domainName string) error {
	store := s.engine.Store()
	srcDir := s.engine.Path().WithLob(fromLob).WithDomain(domainName, "").DomainNameDir()
	if !store.DirectoryExists(srcDir) {
		return common.NewNotFoundError(fmt.Sprintf("Config not found: %s/%s", fromLob, domainName))
	}

	types, err := store.ListSubdirectories(srcDir)
	if err != nil {
		return err
	}
	for _, domainType := range types {
		if err := s.CopyDomainType(fromLob, toLob, domainName, domainType); err != nil {
			return err
		}
	}
	return nil
}

// CopyLob sao chép TOÀN BỘ cây của một LOB sang LOB đích (mọi env),
// ghi đè từng domain đích. Dùng khi tạo LOB mới từ baseline.
func (s *CopyService) CopyLob(fromLob, toLob string) error {
	store := s.engine.Store()
	srcDir := s.engine.Path().WithLob(fromLob).LobDir()
	if !store.DirectoryExists(srcDir) {
		return common.NewNotFoundError("LOB not found: " + fromLob)
	}

	domainNames, err := store.ListSubdirectories(srcDir)
	if err != nil {
		return err
	}
	for _, domainName := range domainNames {
		if err := s.CopyDomainName(fromLob, toLob, domainName); err != nil {
			return err
		}
	}

	s.log.WithFields(logrus.Fields{"fromLob": fromLob, "toLob": toLob}).
		Info("🌲 [COPY] Đã sao chép toàn bộ LOB")
	return nil
}

// CopyLobEnv sao chép một LOB nhưng CHỈ các file của một môi trường
// (kèm meta). env == "ALL" tương đương CopyLob. Cây đích với các env khác
// giữ nguyên; file env đích bị ghi đè.
func (s *CopyService) CopyLobEnv(fromLob, toLob, env string) error {
	if env == "" || env == configtree.EnvAll {
		return s.CopyLob(fromLob, toLob)
	}
	if !configtree.IsSupportedEnv(env) {
		return common.NewValidationError("Unsupported environment: " + env)
	}

	store := s.engine.Store()
	srcLobDir := s.engine.Path().WithLob(fromLob).LobDir()
	if !store.DirectoryExists(srcLobDir) {
		return common.NewNotFoundError("LOB not found: " + fromLob)
	}

	domainNames, err := store.ListSubdirectories(srcLobDir)
	if err != nil {
		return err
	}
	for _, domainName := range domainNames {
		src := s.engine.Path().WithLob(fromLob).WithDomain(domainName, "")
		types, err := store.ListSubdirectories(src.DomainNameDir())
		if err != nil {
			return err
		}
		for _, domainType := range types {
			if err := s.copyDomainEnv(fromLob, toLob, domainName, domainType, env); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyDomainEnv copy meta + file {env}.json của từng element trong meta
func (s *CopyService) copyDomainEnv(fromLob, toLob, domainName, domainType, env string) error {
	store := s.engine.Store()
	src := s.engine.Path().WithLob(fromLob).WithDomain(domainName, domainType)

	srcMeta, err := store.ReadMeta(src.MetaPath())
	if err != nil {
		return err
	}

	unlock := s.engine.LockDomain(toLob, domainName, domainType)
	defer unlock()

	dst := s.engine.Path().WithLob(toLob).WithDomain(domainName, domainType)
	for _, el := range srcMeta.Elements {
		srcFile := src.WithElement(el.Name).WithEnv(env).EnvFile()
		if !store.FileExists(srcFile) {
			continue
		}
		if err := store.CopyFile(srcFile, dst.WithElement(el.Name).WithEnv(env).EnvFile()); err != nil {
			return err
		}
	}
	return store.WriteMeta(dst.MetaPath(), srcMeta)
}

// readOrCreateMeta đọc meta đích hoặc khởi tạo mới nếu domain đích chưa có
func (s *CopyService) readOrCreateMeta(base configtree.ConfigPath, domainName, domainType string) (*configtree.MetaFile, error) {
	store := s.engine.Store()
	if !store.FileExists(base.MetaPath()) {
		return configtree.NewMetaFile(domainName, domainType), nil
	}
	return store.ReadMeta(base.MetaPath())
}
